package models

import "encoding/json"

// LineItem is a snapshot of a product taken when the order was submitted.
// Fields the client sent beyond the known ones are kept in Extra and written
// back out unchanged.
type LineItem struct {
	ProductID int64                  `json:"id,omitempty" bson:"id,omitempty"`
	Name      string                 `json:"name" bson:"name" validate:"required"`
	Price     float64                `json:"price" bson:"price" validate:"gte=0"`
	Quantity  int                    `json:"quantity" bson:"quantity" validate:"gte=1"`
	Extra     map[string]interface{} `json:"-" bson:",inline"`
}

var lineItemFields = []string{"id", "name", "price", "quantity"}

// MarshalJSON flattens Extra next to the known fields
func (li LineItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(li.Extra)+len(lineItemFields))
	for k, v := range li.Extra {
		out[k] = v
	}
	if li.ProductID != 0 {
		out["id"] = li.ProductID
	}
	out["name"] = li.Name
	out["price"] = li.Price
	out["quantity"] = li.Quantity
	return json.Marshal(out)
}

// UnmarshalJSON collects unknown fields into Extra
func (li *LineItem) UnmarshalJSON(data []byte) error {
	type plain LineItem
	var item plain
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range lineItemFields {
		delete(raw, k)
	}

	item.Extra = nil
	if len(raw) > 0 {
		item.Extra = raw
	}
	*li = LineItem(item)
	return nil
}
