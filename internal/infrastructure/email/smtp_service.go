package email

import (
	"context"
	"fmt"
	"net/smtp"

	"pharmacore-backend/pkg/logger"
)

type RecallNoticeData struct {
	Recipient   string
	ProductName string
	BatchNumber string
}

type EmailService interface {
	SendRecallNotice(ctx context.Context, data RecallNoticeData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

// NewSMTPEmailService returns the production sender. With an empty host the
// service runs in mock mode and only logs the notice, so local setups work
// without an SMTP relay.
func NewSMTPEmailService(smtpHost, smtpPort, from string) EmailService {
	addr := ""
	if smtpHost != "" {
		addr = smtpHost + ":" + smtpPort
	}
	return &smtpEmailService{
		smtpAddr: addr,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendRecallNotice(ctx context.Context, data RecallNoticeData) error {
	subject := fmt.Sprintf("URGENT RECALL: %s (Batch %s)", data.ProductName, data.BatchNumber)
	body := fmt.Sprintf(`URGENT: DRUG RECALL NOTICE

This is an automated safety alert from PharmaCore.

Product:      %s
Batch Number: %s

Please quarantine this stock immediately and return it to the manufacturer.

Secure Traceability System`, data.ProductName, data.BatchNumber)

	if s.smtpAddr == "" {
		logger.Info("[MOCK EMAIL] recall notice", map[string]interface{}{
			"to":      data.Recipient,
			"subject": subject,
		})
		return nil
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, data.Recipient, subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{data.Recipient}, msg); err != nil {
		logger.Info("Failed to send recall notice", map[string]interface{}{
			"error":     err.Error(),
			"to":        data.Recipient,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send recall notice: %w", err)
	}

	return nil
}
