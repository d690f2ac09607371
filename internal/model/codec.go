package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Stored blobs carry amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// EncodeItems serializes the inventory collection.
func EncodeItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding items: %w", err)
	}
	return data, nil
}

// DecodeItems parses the inventory collection. An empty blob is an empty collection.
func DecodeItems(data []byte) ([]Item, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}
	return items, nil
}

// EncodeSales serializes the sales collection.
func EncodeSales(sales []Sale) ([]byte, error) {
	if sales == nil {
		sales = []Sale{}
	}
	data, err := json.Marshal(sales)
	if err != nil {
		return nil, fmt.Errorf("encoding sales: %w", err)
	}
	return data, nil
}

// DecodeSales parses the sales collection. An empty blob is an empty collection.
func DecodeSales(data []byte) ([]Sale, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var sales []Sale
	if err := json.Unmarshal(data, &sales); err != nil {
		return nil, fmt.Errorf("decoding sales: %w", err)
	}
	return sales, nil
}
