package service

import (
	"context"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeedbackService forwards customer messages to the shop inbox
type FeedbackService struct {
	notifier Notifier
	validate *validator.Validate
	logger   *zap.Logger
}

func NewFeedbackService(notifier Notifier) *FeedbackService {
	return &FeedbackService{
		notifier: notifier,
		validate: validator.New(),
		logger:   util.GetLogger(),
	}
}

type FeedbackRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// SendFeedback hands the message to the notifier. Delivery failures are logged only.
func (s *FeedbackService) SendFeedback(ctx context.Context, req *FeedbackRequest) error {
	ctx, span := util.StartSpan(ctx, "FeedbackService.SendFeedback")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return validationErr(err)
	}

	if s.notifier == nil {
		s.logger.Warn("Feedback dropped, no notifier configured", zap.String("email", req.Email))
		return nil
	}

	event := &models.FeedbackReceivedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeFeedbackReceived,
			Timestamp: time.Now(),
		},
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.notifier.PublishFeedbackReceived(notifyCtx, event); err != nil {
		util.NotificationsFailedTotal.WithLabelValues("feedback", "publish").Inc()
		s.logger.Error("Failed to hand off feedback", zap.String("email", req.Email), zap.Error(err))
	}
	return nil
}
