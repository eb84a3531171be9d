package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sado-notes-be/internal/constant"
	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/pkg/llm"
	"sado-notes-be/pkg/metrics"
)

const summaryModule = "SUMMARY"

// ISummaryService turns note content into a reminder line. It never fails:
// model errors degrade to a local preview of the content.
type ISummaryService interface {
	Summarize(ctx context.Context, content string) string
}

type summaryService struct {
	provider  llm.LLMProvider
	timeout   time.Duration
	maxTokens int
	logger    logger.ILogger
	metrics   *metrics.ReminderMetrics
}

func NewSummaryService(
	provider llm.LLMProvider,
	timeout time.Duration,
	maxTokens int,
	log logger.ILogger,
	m *metrics.ReminderMetrics,
) ISummaryService {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &summaryService{
		provider:  provider,
		timeout:   timeout,
		maxTokens: maxTokens,
		logger:    log,
		metrics:   m,
	}
}

func (s *summaryService) Summarize(ctx context.Context, content string) (summary string) {
	if strings.TrimSpace(content) == "" {
		s.metrics.IncSummary("empty")
		return constant.SummaryNoContent
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(summaryModule, "Summary provider panicked", map[string]interface{}{"panic": r})
			s.metrics.IncSummary("fallback")
			summary = FallbackSummary(content)
		}
	}()

	if s.provider == nil {
		s.metrics.IncSummary("fallback")
		return FallbackSummary(content)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := []llm.Option{llm.WithTemperature(0.3)}
	if s.maxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(s.maxTokens))
	}

	out, err := s.provider.Generate(callCtx, fmt.Sprintf(constant.SummaryPromptV1, content), opts...)
	if err == nil {
		out = cleanModelOutput(out)
	}
	if err != nil || out == "" {
		details := map[string]interface{}{"timeout": s.timeout.String()}
		if err != nil {
			details["error"] = err.Error()
		}
		s.logger.Warn(summaryModule, "Summary generation failed, using preview", details)
		s.metrics.IncSummary("fallback")
		return FallbackSummary(content)
	}

	s.metrics.IncSummary("model")
	return out
}

// FallbackSummary is the deterministic preview used when the model is unavailable.
func FallbackSummary(content string) string {
	return constant.SummaryFallbackPrefix + truncateRunes(strings.TrimSpace(content), constant.SummaryFallbackLength)
}

// truncateRunes cuts s to n runes, marking the cut with "...".
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func cleanModelOutput(out string) string {
	out = strings.TrimSpace(out)
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	out = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "Notification:"))
	// Models sometimes echo the line wrapped in quotes.
	return strings.TrimSpace(strings.Trim(out, "\"'`"))
}
