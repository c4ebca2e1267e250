package mongostore

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-service/internal/models"
)

// Documents keep the field names the storefront has always used in Mongo.

type userDocument struct {
	ID          string         `bson:"_id"`
	Name        string         `bson:"name"`
	Email       string         `bson:"email"`
	Password    string         `bson:"password"`
	CartData    map[string]int `bson:"cartData"`
	CartVersion int64          `bson:"cartVersion"`
	Date        time.Time      `bson:"date"`
}

type productDocument struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty"`
	ID          int64              `bson:"id"`
	Name        string             `bson:"name"`
	Image       string             `bson:"image"`
	Category    string             `bson:"category"`
	NewPrice    float64            `bson:"new_price"`
	OldPrice    float64            `bson:"old_price"`
	Description string             `bson:"description"`
	Author      string             `bson:"author"`
	Date        time.Time          `bson:"date"`
	Available   bool               `bson:"available"`
}

type orderDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Email       string            `bson:"email"`
	Address     string            `bson:"address"`
	City        string            `bson:"city"`
	PhoneNumber string            `bson:"phoneNumber"`
	Items       []models.LineItem `bson:"items"`
	Total       float64           `bson:"total"`
	Status      string            `bson:"status"`
	CreatedAt   time.Time         `bson:"createdAt"`
}

func encodeCart(cart models.Cart) map[string]int {
	data := make(map[string]int, len(cart))
	for slot, qty := range cart {
		data[strconv.Itoa(slot)] = qty
	}
	return data
}

func decodeCart(data map[string]int) models.Cart {
	cart := make(models.Cart, len(data))
	for key, qty := range data {
		slot, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		cart[slot] = qty
	}
	return cart
}

func toUserDocument(u *models.User) userDocument {
	return userDocument{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Password:    u.Password,
		CartData:    encodeCart(u.Cart),
		CartVersion: u.CartVersion,
		Date:        u.CreatedAt,
	}
}

func (d userDocument) toModel() *models.User {
	return &models.User{
		ID:          d.ID,
		Name:        d.Name,
		Email:       d.Email,
		Password:    d.Password,
		Cart:        decodeCart(d.CartData),
		CartVersion: d.CartVersion,
		CreatedAt:   d.Date,
	}
}

func toProductDocument(p *models.Product) productDocument {
	return productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Image:       p.Image,
		Category:    p.Category,
		NewPrice:    p.NewPrice,
		OldPrice:    p.OldPrice,
		Description: p.Description,
		Author:      p.Author,
		Date:        p.Date,
		Available:   p.Available,
	}
}

func (d productDocument) toModel() models.Product {
	return models.Product{
		ID:          d.ID,
		Name:        d.Name,
		Image:       d.Image,
		Category:    d.Category,
		NewPrice:    d.NewPrice,
		OldPrice:    d.OldPrice,
		Description: d.Description,
		Author:      d.Author,
		Date:        d.Date,
		Available:   d.Available,
	}
}

func toOrderDocument(o *models.Order) orderDocument {
	return orderDocument{
		ID:          o.ID,
		Name:        o.Name,
		Email:       o.Email,
		Address:     o.Address,
		City:        o.City,
		PhoneNumber: o.PhoneNumber,
		Items:       o.Items,
		Total:       o.Total,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	}
}

func (d orderDocument) toModel() models.Order {
	return models.Order{
		ID:          d.ID,
		Name:        d.Name,
		Email:       d.Email,
		Address:     d.Address,
		City:        d.City,
		PhoneNumber: d.PhoneNumber,
		Items:       d.Items,
		Total:       d.Total,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
	}
}
