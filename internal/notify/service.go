package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/pkg/config"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// defaultCountryCode is prepended to phone numbers stored without one.
const defaultCountryCode = "+91"

// Service matches the daily message schedule against the wall clock
// and dispatches what is due. Tick is meant to run once a minute; the
// message log keeps a repeated minute or an overlapping run from
// sending the same message twice in a day.
type Service struct {
	repo     contracts.MessageRepository
	sender   Sender
	location *time.Location

	now    func() time.Time
	logger *logger.Logger
}

// NewService creates the dispatch service. The configured timezone
// governs which wall-clock minute a send_time matches.
func NewService(repo contracts.MessageRepository, sender Sender, cfg config.NotifyConfig, log *logger.Logger) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Service{
		repo:     repo,
		sender:   sender,
		location: loc,
		now:      time.Now,
		logger:   log.WithField("module", "notify"),
	}, nil
}

// Tick dispatches the messages due at the current minute and returns
// how many were sent. Delivery failures are logged and left unlogged
// in the message log, so the next matching minute retries them.
func (s *Service) Tick(ctx context.Context) (int, error) {
	now := s.now().In(s.location)
	sendTime := now.Format("15:04")
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	pending, err := s.repo.PendingMessages(ctx, sendTime, day)
	if err != nil {
		return 0, fmt.Errorf("pending messages at %s: %w", sendTime, err)
	}

	sent := 0
	for _, msg := range pending {
		phone := NormalizePhone(msg.Phone)

		if err := s.sender.Send(ctx, phone, msg.Text); err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"scno":       msg.SCNO,
				"message_id": msg.MessageID,
			}).Warn("Message delivery failed")
			continue
		}

		if err := s.repo.LogSent(ctx, msg.SCNO, msg.MessageID, day); err != nil {
			return sent, fmt.Errorf("log sent message: %w", err)
		}
		sent++
	}

	if len(pending) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"due":  len(pending),
			"sent": sent,
			"at":   sendTime,
		}).Info("Message dispatch completed")
	}

	return sent, nil
}

// NormalizePhone ensures a dialable number with a country code.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return defaultCountryCode + phone
}
