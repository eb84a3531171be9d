package push

import (
	"context"

	"sado-notes-be/internal/pkg/logger"
)

type Outcome string

const (
	Delivered      Outcome = "delivered"
	Unregistered   Outcome = "unregistered"
	SenderMismatch Outcome = "sender_mismatch"
	QuotaExceeded  Outcome = "quota_exceeded"
	Other          Outcome = "other"
	// Skipped marks tokens never attempted because an earlier send hit quota.
	Skipped Outcome = "skipped"
)

type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

type Result struct {
	Token   string
	Outcome Outcome
	Err     error
}

// Sender delivers a notification to device tokens. Transport failures are
// reported per token in Result, never as a returned error.
type Sender interface {
	Deliver(ctx context.Context, token string, msg Message) Result
	DeliverMany(ctx context.Context, tokens []string, msg Message) []Result
}

// LogSender only logs. It stands in for FCM when no credentials are configured.
type LogSender struct {
	logger logger.ILogger
}

func NewLogSender(log logger.ILogger) *LogSender {
	return &LogSender{logger: log}
}

func (s *LogSender) Deliver(ctx context.Context, token string, msg Message) Result {
	s.logger.Info("PUSH", "push delivery (log only)", map[string]interface{}{
		"token": logger.MaskToken(token),
		"title": msg.Title,
		"body":  msg.Body,
		"data":  msg.Data,
	})
	return Result{Token: token, Outcome: Delivered}
}

func (s *LogSender) DeliverMany(ctx context.Context, tokens []string, msg Message) []Result {
	results := make([]Result, 0, len(tokens))
	for _, token := range tokens {
		results = append(results, s.Deliver(ctx, token, msg))
	}
	return results
}
