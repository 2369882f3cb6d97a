package domain

// KeyPrefix namespaces every key feedex writes to the shared store.
const KeyPrefix = "feedex:"
