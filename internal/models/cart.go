package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CartSlots is the size of the cart slot domain. Every cart key lies in [0, CartSlots).
const CartSlots = 300

// Cart maps a slot index to a quantity. It marshals to a JSON object keyed by
// the decimal slot number, which is the shape clients already hold.
type Cart map[int]int

// NewCart returns a cart with every slot present and set to zero
func NewCart() Cart {
	cart := make(Cart, CartSlots)
	for i := 0; i < CartSlots; i++ {
		cart[i] = 0
	}
	return cart
}

// ValidSlot reports whether slot lies inside the cart domain
func ValidSlot(slot int) bool {
	return slot >= 0 && slot < CartSlots
}

// Clone returns an independent copy of the cart
func (c Cart) Clone() Cart {
	clone := make(Cart, len(c))
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// Increment adds one to slot
func (c Cart) Increment(slot int) {
	c[slot]++
}

// Decrement removes one from slot, never going below zero
func (c Cart) Decrement(slot int) {
	if c[slot] > 0 {
		c[slot]--
	}
}

// Value implements driver.Valuer so the cart is stored as JSONB
func (c Cart) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (c *Cart) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*c = Cart{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Cart", src)
	}

	cart := Cart{}
	if err := json.Unmarshal(data, &cart); err != nil {
		return fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	*c = cart
	return nil
}

// LineItems is an order's embedded item snapshot list, stored as JSONB
type LineItems []LineItem

// Value implements driver.Valuer
func (li LineItems) Value() (driver.Value, error) {
	if li == nil {
		return "[]", nil
	}
	data, err := json.Marshal(li)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (li *LineItems) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*li = LineItems{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into LineItems", src)
	}

	items := LineItems{}
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to unmarshal line items: %w", err)
	}
	*li = items
	return nil
}
