package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rain-reminder/internal/domain"
)

// Sender delivers a rendered message. Implementations may be SMTP, an API
// provider, or a fake in tests.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one email to one or more recipients.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string // plain-text fallback
}

// Notifier turns a RainSummary into a reminder email.
type Notifier struct {
	renderer      *Renderer
	sender        Sender
	recipients    []string
	subjectPrefix string
	logger        *slog.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(renderer *Renderer, sender Sender, recipients []string, subjectPrefix string, logger *slog.Logger) *Notifier {
	return &Notifier{
		renderer:      renderer,
		sender:        sender,
		recipients:    recipients,
		subjectPrefix: subjectPrefix,
		logger:        logger,
	}
}

// Subject builds "<prefix> - <Tier> Rain".
func Subject(prefix string, tier domain.Tier) string {
	if prefix == "" {
		return tier.Title() + " Rain"
	}
	return fmt.Sprintf("%s - %s Rain", prefix, tier.Title())
}

// Notify emails the recipients when the summary's worst tier is above NO.
// It reports whether a message was sent; a dry day is (false, nil).
func (n *Notifier) Notify(ctx context.Context, summary domain.RainSummary, loc domain.Location, day time.Time) (bool, error) {
	if !summary.WorstTier.IsRain() {
		n.logger.Info("no rain expected today, no email will be sent")
		return false, nil
	}

	data := NewTemplateData(summary, loc, day)
	data.Subject = Subject(n.subjectPrefix, summary.WorstTier)

	body, err := n.renderer.Render(summary.WorstTier, data)
	if err != nil {
		return false, err
	}

	msg := Message{
		To:       n.recipients,
		Subject:  data.Subject,
		HTMLBody: body,
		TextBody: plainText(data),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return false, fmt.Errorf("send reminder: %w", err)
	}

	n.logger.Info("reminder email sent",
		"tier", summary.WorstTier.String(),
		"recipients", len(n.recipients),
		"rain_hours", summary.TotalHours,
	)
	return true, nil
}
