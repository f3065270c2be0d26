package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
)

// ReportService sends the final standings report when a session finishes.
// Implements runtime.Notifier.
type ReportService interface {
	SessionFinished(session *entity.Session, players []entity.SessionPlayer)
}

// NoopReportService is used when email reporting is disabled.
type NoopReportService struct{}

func (s *NoopReportService) SessionFinished(session *entity.Session, players []entity.SessionPlayer) {
	log.Printf("[ReportService] noop standings report session=%s players=%d", session.ID, len(players))
}

// ResendReportService sends standings reports via Resend REST API.
type ResendReportService struct {
	from   string
	to     string
	client *resend.Client
}

func NewResendReportService(apiKey, from, to string) (*ResendReportService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("report from and to addresses are required")
	}
	return &ResendReportService{
		from:   from,
		to:     to,
		client: resend.NewClient(apiKey),
	}, nil
}

// SessionFinished собирает итоговую таблицу и отправляет отчет.
// Вызывается контроллером асинхронно; ошибки только логируются.
func (s *ResendReportService) SessionFinished(session *entity.Session, players []entity.SessionPlayer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.send(ctx, session, players); err != nil {
		log.Printf("[ReportService] Ошибка отправки отчета по сессии %s: %v", session.ID, err)
	}
}

func (s *ResendReportService) send(ctx context.Context, session *entity.Session, players []entity.SessionPlayer) error {
	standings := make([]entity.SessionPlayer, len(players))
	copy(standings, players)
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	var text strings.Builder
	var html strings.Builder
	fmt.Fprintf(&text, "Session %q finished.\n\nFinal standings:\n", session.Name)
	fmt.Fprintf(&html, "<h2>Session %q finished</h2><table><tr><th>#</th><th>Player</th><th>Score</th></tr>", session.Name)
	for i, p := range standings {
		fmt.Fprintf(&text, "%d. %s - %.2f\n", i+1, p.Name, p.Score)
		fmt.Fprintf(&html, "<tr><td>%d</td><td>%s</td><td>%.2f</td></tr>", i+1, p.Name, p.Score)
	}
	html.WriteString("</table>")

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		Subject: fmt.Sprintf("Quiz session finished: %s", session.Name),
		Text:    text.String(),
		Html:    html.String(),
	}

	options := &resend.SendEmailOptions{
		// Повторная отправка того же отчета схлопывается на стороне Resend
		IdempotencyKey: "session-report-" + session.ID,
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
