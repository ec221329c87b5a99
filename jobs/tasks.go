package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskShiftAutoclose closes shifts whose scheduled end passed.
	TaskShiftAutoclose = "shift:autoclose"
	// TaskGeofenceAudit re-counts flagged guards for the hourly sweep.
	TaskGeofenceAudit = "geofence:audit"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewShiftAutocloseTask constructs the cron task closing stale shifts.
func NewShiftAutocloseTask() *asynq.Task {
	return asynq.NewTask(TaskShiftAutoclose, nil)
}

// NewGeofenceAuditTask constructs the hourly flagged-guard sweep task.
func NewGeofenceAuditTask() *asynq.Task {
	return asynq.NewTask(TaskGeofenceAudit, nil)
}

// Mailer delivers transactional email over SMTP. Delivery is fire-and-forget
// from the caller's point of view; failures surface as task retries.
type Mailer struct {
	Addr   string
	From   string
	Logger *slog.Logger
}

// Handle processes TaskTypeSendEmail tasks.
func (m *Mailer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, payload.To, payload.Subject, payload.Body)
	if err := smtp.SendMail(m.Addr, nil, m.From, []string{payload.To}, []byte(msg)); err != nil {
		if m.Logger != nil {
			m.Logger.Warn("send email", slog.String("to", payload.To), slog.Any("error", err))
		}
		return err
	}
	if m.Logger != nil {
		m.Logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	}
	return nil
}
