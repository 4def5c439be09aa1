package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/campusgate/campusgate/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
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
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// MailSender delivers a single message.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MailHandler processes TaskTypeSendEmail tasks.
type MailHandler struct {
	sender  MailSender
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewMailHandler constructs a MailHandler.
func NewMailHandler(sender MailSender, logger *slog.Logger, metrics *jobmetrics.Metrics) *MailHandler {
	return &MailHandler{sender: sender, logger: logger, metrics: metrics}
}

// Handle delivers the message described by the task payload.
func (h *MailHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := h.metrics.Track(TaskTypeSendEmail)
	err := h.sender.Send(ctx, payload.To, payload.Subject, payload.Body)
	if err != nil && h.logger != nil {
		h.logger.Error("send email", slog.String("to", payload.To), slog.Any("error", err))
	}
	return tracker.End(err)
}
