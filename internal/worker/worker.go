package worker

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/mailer"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

const (
	orderConfirmedSubject = "Order confirmation"
	kindOrder             = "order_confirmed"
	kindFeedback          = "feedback"
)

var orderConfirmedTemplate = template.Must(template.New("order_confirmed").Parse(`<h1>Thank you for your order!</h1>
<p>Dear {{.Name}}, your order has been placed successfully.</p>
<h2>Order details:</h2>
<ul>
{{- range .Items}}
  <li>
    <strong>{{.Name}}</strong>
    <ul>
      <li>Price: {{.Price}} UAH</li>
      <li>Quantity: {{.Quantity}}</li>
    </ul>
  </li>
{{- end}}
</ul>
<p>Total to pay: {{.Total}} UAH</p>
<p>Thank you for choosing us!</p>
`))

var feedbackTemplate = template.Must(template.New("feedback").Parse(`<p>Message from {{.Name}} &lt;{{.Email}}&gt;:</p>
<p>{{.Message}}</p>
`))

// Consumer is the message source the worker drains
type Consumer interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// NotificationWorker turns notification events into emails. Delivery is best
// effort: failures are logged and counted, and the event is not retried.
type NotificationWorker struct {
	consumer     Consumer
	eventHandler *broker.EventHandler
	mailer       mailer.Mailer
	inbox        string
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker. Feedback is sent to inbox.
func NewNotificationWorker(consumer Consumer, m mailer.Mailer, inbox string) *NotificationWorker {
	w := &NotificationWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		mailer:       m,
		inbox:        inbox,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnOrderConfirmed(w.HandleOrderConfirmed)
	w.eventHandler.OnFeedbackReceived(w.HandleFeedbackReceived)

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

// HandleOrderConfirmed emails the order summary to the customer
func (w *NotificationWorker) HandleOrderConfirmed(ctx context.Context, event *models.OrderConfirmedEvent) error {
	ctx, span := util.StartSpan(ctx, "NotificationWorker.HandleOrderConfirmed")
	defer span.End()

	body, err := render(orderConfirmedTemplate, event)
	if err != nil {
		util.NotificationsFailedTotal.WithLabelValues(kindOrder, "render").Inc()
		w.logger.Error("Failed to render order email", zap.String("order_id", event.OrderID), zap.Error(err))
		return nil
	}

	w.send(ctx, kindOrder, event.Email, orderConfirmedSubject, body,
		zap.String("order_id", event.OrderID))
	return nil
}

// HandleFeedbackReceived forwards the message to the shop inbox
func (w *NotificationWorker) HandleFeedbackReceived(ctx context.Context, event *models.FeedbackReceivedEvent) error {
	ctx, span := util.StartSpan(ctx, "NotificationWorker.HandleFeedbackReceived")
	defer span.End()

	body, err := render(feedbackTemplate, event)
	if err != nil {
		util.NotificationsFailedTotal.WithLabelValues(kindFeedback, "render").Inc()
		w.logger.Error("Failed to render feedback email", zap.Error(err))
		return nil
	}

	w.send(ctx, kindFeedback, w.inbox, fmt.Sprintf("Message from %s", event.Name), body,
		zap.String("from", event.Email))
	return nil
}

func (w *NotificationWorker) send(ctx context.Context, kind, to, subject, body string, fields ...zap.Field) {
	start := time.Now()
	err := w.mailer.SendEmail(ctx, to, subject, body)
	util.EmailSendLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		util.NotificationsFailedTotal.WithLabelValues(kind, "send").Inc()
		w.logger.Error("Failed to send email",
			append(fields, zap.String("kind", kind), zap.String("to", to), zap.Error(err))...)
		return
	}

	util.EmailsSentTotal.WithLabelValues(kind).Inc()
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
