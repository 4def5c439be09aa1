package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// Client enqueues background tasks for the worker.
type Client struct {
	inner *asynq.Client
}

// NewClient constructs a Client over the shared Redis instance.
func NewClient(opts asynq.RedisClientOpt) *Client {
	return &Client{inner: asynq.NewClient(opts)}
}

// EnqueueMail queues a transactional email for delivery.
func (c *Client) EnqueueMail(ctx context.Context, to, subject, body string) error {
	task, err := NewSendEmailTask(SendEmailPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("jobs: build mail task: %w", err)
	}
	if _, err := c.inner.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("jobs: enqueue mail task: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.inner.Close()
}
