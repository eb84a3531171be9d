package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sado-notes-be/internal/constant"
	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	out    string
	err    error
	delay  time.Duration
	panics bool
	prompt string
}

func (s *stubProvider) Chat(ctx context.Context, _ []llm.Message, opts ...llm.Option) (string, error) {
	return s.Generate(ctx, "", opts...)
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, _ ...llm.Option) (string, error) {
	s.prompt = prompt
	if s.panics {
		panic("provider exploded")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.out, s.err
}

func TestSummarize(t *testing.T) {
	content := "Standup with team at 10 AM"
	preview := constant.SummaryFallbackPrefix + content

	tests := []struct {
		name     string
		provider llm.LLMProvider
		content  string
		want     string
	}{
		{name: "model line", provider: &stubProvider{out: "Reminder: Team standup at 10 AM"}, content: content, want: "Reminder: Team standup at 10 AM"},
		{name: "echoed label and quotes", provider: &stubProvider{out: "Notification: \"Reminder: Standup at 10 AM\"\nextra"}, content: content, want: "Reminder: Standup at 10 AM"},
		{name: "empty content", provider: &stubProvider{out: "ignored"}, content: "  ", want: constant.SummaryNoContent},
		{name: "provider error", provider: &stubProvider{err: errors.New("boom")}, content: content, want: preview},
		{name: "blank output", provider: &stubProvider{out: "   "}, content: content, want: preview},
		{name: "panic", provider: &stubProvider{panics: true}, content: content, want: preview},
		{name: "no provider", provider: nil, content: content, want: preview},
		{name: "timeout", provider: &stubProvider{out: "late", delay: time.Second}, content: content, want: preview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSummaryService(tt.provider, 50*time.Millisecond, 100, logger.NewNopLogger(), nil)
			assert.Equal(t, tt.want, svc.Summarize(context.Background(), tt.content))
		})
	}
}

func TestSummarize_PromptCarriesContent(t *testing.T) {
	p := &stubProvider{out: "ok"}
	NewSummaryService(p, time.Second, 0, logger.NewNopLogger(), nil).Summarize(context.Background(), "Pay rent on Friday")
	assert.True(t, strings.HasSuffix(p.prompt, "Note: Pay rent on Friday\nNotification:"))
}

func TestFallbackSummaryTruncates(t *testing.T) {
	long := strings.Repeat("é", 150)
	got := FallbackSummary(long)
	assert.Equal(t, constant.SummaryFallbackPrefix+strings.Repeat("é", 100)+"...", got)
}

func TestCleanModelOutput(t *testing.T) {
	tests := map[string]string{
		"\"Reminder: Standup at 10 AM\"\nextra":       "Reminder: Standup at 10 AM",
		"Notification: 'Pay rent by Friday'":          "Pay rent by Friday",
		"  `Call mom`  \n\nNotification: second line": "Call mom",
		"Water the plants":                            "Water the plants",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanModelOutput(in), in)
	}
}
