package market

import "github.com/kailas-cloud/feedex/internal/domain"

// Carrier is a mobile operator with a stable integer id.
type Carrier struct {
	id   int
	slug string
}

// ID returns the stable carrier id.
func (c Carrier) ID() int { return c.id }

// Slug returns the carrier code used on the wire.
func (c Carrier) Slug() string { return c.slug }

var carriers = []Carrier{
	{id: 1, slug: "telefonica"},
	{id: 2, slug: "america_movil"},
	{id: 3, slug: "china_unicom"},
	{id: 4, slug: "deutsche_telekom"},
	{id: 5, slug: "etisalat"},
	{id: 6, slug: "hutchinson_three_group"},
	{id: 7, slug: "kddi"},
	{id: 8, slug: "kt"},
	{id: 9, slug: "megafon"},
	{id: 10, slug: "qtel"},
	{id: 11, slug: "singtel"},
	{id: 12, slug: "smart"},
	{id: 13, slug: "sprint"},
	{id: 14, slug: "telecom_italia_group"},
	{id: 15, slug: "telenor"},
	{id: 16, slug: "tmn"},
	{id: 17, slug: "vimpelcom"},
	{id: 18, slug: "grameenphone"},
}

var (
	carriersBySlug = make(map[string]Carrier, len(carriers))
	carriersByID   = make(map[int]Carrier, len(carriers))
)

func init() {
	for _, c := range carriers {
		carriersBySlug[c.slug] = c
		carriersByID[c.id] = c
	}
}

// CarrierBySlug resolves a carrier code.
func CarrierBySlug(slug string) (Carrier, error) {
	c, ok := carriersBySlug[slug]
	if !ok {
		return Carrier{}, domain.NewValidation(domain.ErrInvalidCarrier, "unknown carrier %q", slug)
	}
	return c, nil
}

// CarrierByID resolves a carrier id.
func CarrierByID(id int) (Carrier, bool) {
	c, ok := carriersByID[id]
	return c, ok
}
