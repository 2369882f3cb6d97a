package feed

import (
	"encoding/json"
	"fmt"
)

// EncodeContent serializes an element payload for storage.
func EncodeContent(c Content) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("element content is required")
	}
	return json.Marshal(c)
}

// DecodeContent restores an element payload of the given type.
func DecodeContent(t ItemType, data []byte) (Content, error) {
	switch t {
	case TypeApp:
		var c AppContent
		err := json.Unmarshal(data, &c)
		return c, wrapDecode(t, err)
	case TypeCollection:
		var c CollectionContent
		err := json.Unmarshal(data, &c)
		return c, wrapDecode(t, err)
	case TypeBrand:
		var c BrandContent
		err := json.Unmarshal(data, &c)
		return c, wrapDecode(t, err)
	case TypeShelf:
		var c ShelfContent
		err := json.Unmarshal(data, &c)
		return c, wrapDecode(t, err)
	}
	return nil, fmt.Errorf("unknown item type %q", t)
}

func wrapDecode(t ItemType, err error) error {
	if err != nil {
		return fmt.Errorf("decode %s content: %w", t, err)
	}
	return nil
}
