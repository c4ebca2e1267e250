package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CART_CONSISTENCY", "")
	t.Setenv("DATABASE_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "optimistic", cfg.Cart.Consistency)
	assert.Equal(t, 5, cfg.Cart.MaxRetries)
	assert.Equal(t, "storefront-notifications", cfg.Kafka.TopicNotifications)
	assert.Equal(t, "http://localhost:4000", cfg.Media.PublicBaseURL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("CART_CONSISTENCY", "last-write-wins")
	t.Setenv("CART_MAX_RETRIES", "9")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("SMTP_PORT", "2525")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "last-write-wins", cfg.Cart.Consistency)
	assert.Equal(t, 9, cfg.Cart.MaxRetries)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, 2525, cfg.Mail.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Media.PublicBaseURL)
}

func TestLoad_InvalidNumbersKeepDefaults(t *testing.T) {
	t.Setenv("CART_MAX_RETRIES", "five")
	t.Setenv("SMTP_PORT", "25x")
	t.Setenv("REDIS_DB", "-")
	t.Setenv("DATABASE_AUTO_MIGRATE", "sometimes")

	cfg := Load()

	assert.Equal(t, 5, cfg.Cart.MaxRetries)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.True(t, cfg.Database.AutoMigrate)
}
