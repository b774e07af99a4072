// Package notify dispatches the scheduled daily messages to client
// contacts through a pluggable delivery gateway.
package notify

import (
	"context"
	"fmt"

	"github.com/elementsenergies/flexrank/pkg/httputil"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// Sender delivers one message to one phone number.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// GatewaySender delivers messages through an HTTP message gateway.
type GatewaySender struct {
	http   *httputil.Client
	url    string
	logger *logger.Logger
}

// NewGatewaySender creates a sender posting to the given gateway URL.
func NewGatewaySender(client *httputil.Client, url string, log *logger.Logger) *GatewaySender {
	return &GatewaySender{
		http:   client,
		url:    url,
		logger: log.WithField("module", "notify"),
	}
}

// Send posts one message to the gateway.
func (s *GatewaySender) Send(ctx context.Context, phone, text string) error {
	payload := map[string]string{
		"to":   phone,
		"text": text,
	}

	resp, err := s.http.PostJSON(ctx, s.url, payload)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
