package fcm

import (
	"context"
	"fmt"

	"sado-notes-be/pkg/push"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// MaxMulticastTokens is the FCM limit for a single multicast request.
const MaxMulticastTokens = 500

type Config struct {
	ProjectID       string
	CredentialsFile string
	CredentialsJSON string
	BatchSize       int
}

// messagingClient is the part of *messaging.Client the sender uses.
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type Client struct {
	messaging messagingClient
	batchSize int
	classify  func(error) push.Outcome
}

var _ push.Sender = (*Client)(nil)

// NewClient builds a Firebase app from service-account credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	mc, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return newClient(mc, cfg.BatchSize), nil
}

func newClient(mc messagingClient, batchSize int) *Client {
	if batchSize <= 0 || batchSize > MaxMulticastTokens {
		batchSize = MaxMulticastTokens
	}
	return &Client{messaging: mc, batchSize: batchSize, classify: Classify}
}

// Classify maps a Firebase send error onto a delivery outcome.
func Classify(err error) push.Outcome {
	switch {
	case err == nil:
		return push.Delivered
	case messaging.IsUnregistered(err):
		return push.Unregistered
	case messaging.IsSenderIDMismatch(err):
		return push.SenderMismatch
	case messaging.IsQuotaExceeded(err):
		return push.QuotaExceeded
	default:
		return push.Other
	}
}

func notification(msg push.Message) *messaging.Notification {
	return &messaging.Notification{Title: msg.Title, Body: msg.Body}
}

func (c *Client) Deliver(ctx context.Context, token string, msg push.Message) push.Result {
	_, err := c.messaging.Send(ctx, &messaging.Message{
		Token:        token,
		Notification: notification(msg),
		Data:         msg.Data,
	})
	return push.Result{Token: token, Outcome: c.classify(err), Err: err}
}

// DeliverMany sends in multicast chunks. Once a chunk reports quota exhaustion
// the remaining chunks are not sent and their tokens come back as Skipped.
func (c *Client) DeliverMany(ctx context.Context, tokens []string, msg push.Message) []push.Result {
	results := make([]push.Result, 0, len(tokens))
	halted := false

	for start := 0; start < len(tokens); start += c.batchSize {
		end := start + c.batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[start:end]

		if halted {
			for _, token := range chunk {
				results = append(results, push.Result{Token: token, Outcome: push.Skipped})
			}
			continue
		}

		batch, err := c.messaging.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       chunk,
			Notification: notification(msg),
			Data:         msg.Data,
		})
		if err != nil {
			outcome := c.classify(err)
			if outcome == push.Delivered {
				outcome = push.Other
			}
			for _, token := range chunk {
				results = append(results, push.Result{Token: token, Outcome: outcome, Err: err})
			}
			halted = outcome == push.QuotaExceeded
			continue
		}

		for i, token := range chunk {
			if i >= len(batch.Responses) || batch.Responses[i] == nil {
				results = append(results, push.Result{Token: token, Outcome: push.Other, Err: fmt.Errorf("missing response for token")})
				continue
			}
			resp := batch.Responses[i]
			if resp.Success {
				results = append(results, push.Result{Token: token, Outcome: push.Delivered})
				continue
			}
			outcome := c.classify(resp.Error)
			if outcome == push.Delivered {
				outcome = push.Other
			}
			if outcome == push.QuotaExceeded {
				halted = true
			}
			results = append(results, push.Result{Token: token, Outcome: outcome, Err: resp.Error})
		}
	}
	return results
}
