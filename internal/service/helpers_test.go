package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []*models.OrderConfirmedEvent
	feedback  []*models.FeedbackReceivedEvent
	err       error
}

func (n *recordingNotifier) PublishOrderConfirmed(_ context.Context, event *models.OrderConfirmedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, event)
	return n.err
}

func (n *recordingNotifier) PublishFeedbackReceived(_ context.Context, event *models.FeedbackReceivedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.feedback = append(n.feedback, event)
	return n.err
}

func (n *recordingNotifier) confirmations() []*models.OrderConfirmedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*models.OrderConfirmedEvent(nil), n.confirmed...)
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connection refused")

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redisclient.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, redisclient.NewFromRedis(rdb)
}
