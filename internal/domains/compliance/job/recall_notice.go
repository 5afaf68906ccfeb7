package job

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"pharmacore-backend/internal/infrastructure/email"
	"pharmacore-backend/internal/shared"
	"pharmacore-backend/pkg/logger"
)

// RecallNoticeHandler delivers one recall notice per task. Tasks are enqueued
// once per distinct customer when the recall record commits, so a retry here
// can re-send to one customer but never widen the set.
type RecallNoticeHandler struct {
	emailSvc email.EmailService
}

func NewRecallNoticeHandler(emailSvc email.EmailService) *RecallNoticeHandler {
	return &RecallNoticeHandler{emailSvc: emailSvc}
}

func (h *RecallNoticeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.RecallNoticePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal recall notice payload: %v: %w", err, asynq.SkipRetry)
	}

	// Customer names are not always addresses. Named accounts are handled by
	// the account team off a logged notice; only addresses get direct email.
	if !strings.Contains(payload.Customer, "@") {
		logger.Info("recall notice for named customer (no email on file)", map[string]interface{}{
			"customer":     payload.Customer,
			"batch_number": payload.BatchNumber,
			"product":      payload.ProductName,
		})
		return nil
	}

	return h.emailSvc.SendRecallNotice(ctx, email.RecallNoticeData{
		Recipient:   payload.Customer,
		ProductName: payload.ProductName,
		BatchNumber: payload.BatchNumber,
	})
}
