package main

import (
	"github.com/hibiken/asynq"

	complianceJob "pharmacore-backend/internal/domains/compliance/job"
	"pharmacore-backend/internal/infrastructure/email"
	"pharmacore-backend/internal/shared"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	recallNotice *complianceJob.RecallNoticeHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(cfg *Config) *HandlerRegistry {
	emailSvc := email.NewSMTPEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)

	return &HandlerRegistry{
		recallNotice: complianceJob.NewRecallNoticeHandler(emailSvc),
	}
}

// RegisterHandlers wires each task type to its handler
func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Handle(shared.TypeSendRecallNotice, r.recallNotice)
}
