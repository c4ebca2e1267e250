package models

import "time"

// Event types
const (
	EventTypeOrderConfirmed   = "ORDER_CONFIRMED"
	EventTypeFeedbackReceived = "FEEDBACK_RECEIVED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderConfirmedEvent asks the notification worker to email the customer
type OrderConfirmedEvent struct {
	BaseEvent
	OrderID string     `json:"order_id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Items   []LineItem `json:"items"`
	Total   float64    `json:"total"`
}

// FeedbackReceivedEvent forwards a customer message to the shop inbox
type FeedbackReceivedEvent struct {
	BaseEvent
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
