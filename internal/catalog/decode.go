package catalog

import (
	"encoding/json"
	"fmt"
)

// listEnvelope covers the object shapes the backend has used for listings.
// Exactly one of the array fields is populated per response.
type listEnvelope struct {
	Results  []Product `json:"results"`
	Products []Product `json:"products"`
	Data     []Product `json:"data"`
}

// DecodeProductList decodes a listing payload that may be a bare array or an
// envelope carrying one of the known array fields. Anything else is rejected
// as malformed rather than coerced.
func DecodeProductList(data []byte) ([]Product, error) {
	var direct []Product
	if err := json.Unmarshal(data, &direct); err == nil {
		if verr := validateProducts(direct); verr != nil {
			return nil, verr
		}
		return direct, nil
	}

	var envelope listEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("unrecognized product listing payload: %w", err)
	}

	var products []Product
	switch {
	case envelope.Results != nil:
		products = envelope.Results
	case envelope.Products != nil:
		products = envelope.Products
	case envelope.Data != nil:
		products = envelope.Data
	default:
		return nil, fmt.Errorf("product listing payload has no recognizable array field")
	}

	if err := validateProducts(products); err != nil {
		return nil, err
	}
	return products, nil
}
