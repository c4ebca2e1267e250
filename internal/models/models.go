package models

import "time"

// User represents a registered customer together with their cart
type User struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Password    string    `db:"password" json:"-"`
	Cart        Cart      `db:"cart_data" json:"cartData"`
	CartVersion int64     `db:"cart_version" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"date"`
}

// Product represents a product in the catalog
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Image       string    `db:"image" json:"image"`
	Category    string    `db:"category" json:"category"`
	NewPrice    float64   `db:"new_price" json:"new_price"`
	OldPrice    float64   `db:"old_price" json:"old_price"`
	Description string    `db:"description" json:"description"`
	Author      string    `db:"author" json:"author"`
	Date        time.Time `db:"date" json:"date"`
	Available   bool      `db:"available" json:"available"`
}

// Order represents a submitted customer order
type Order struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Address     string    `db:"address" json:"address"`
	City        string    `db:"city" json:"city"`
	PhoneNumber string    `db:"phone_number" json:"phoneNumber"`
	Items       LineItems `db:"items" json:"items"`
	Total       float64   `db:"total" json:"total"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
)

// Confirm moves a pending order to confirmed. It reports false when the
// order was already confirmed.
func (o *Order) Confirm() bool {
	if o.Status == OrderStatusConfirmed {
		return false
	}
	o.Status = OrderStatusConfirmed
	return true
}
