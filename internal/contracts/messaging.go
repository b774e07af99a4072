package contracts

import (
	"context"
	"time"
)

// PendingMessage is one (client, message) pair due for dispatch: an
// active contact matched with an active daily message whose send_time
// equals the current wall-clock minute and which has not been logged
// for today.
type PendingMessage struct {
	SCNO      string
	Phone     string
	MessageID int
	Text      string
}

// FeedbackResponse is one client's reply for a given day, recorded by
// the webhook listener. ShiftedPercent is how much load the client
// says they moved off peak; the raw body is kept for audit.
type FeedbackResponse struct {
	SCNO           string
	Date           time.Time
	ShiftedPercent int
	RawBody        string
}

// MessageRepository manages the daily message schedule and send log.
type MessageRepository interface {
	// PendingMessages returns the messages due at sendTime (a "15:04"
	// wall-clock string) that have not yet been sent on day.
	PendingMessages(ctx context.Context, sendTime string, day time.Time) ([]PendingMessage, error)

	// LogSent records a successful dispatch so the same message is
	// not sent twice in one day.
	LogSent(ctx context.Context, scno string, messageID int, day time.Time) error
}

// FeedbackRepository resolves inbound phone numbers and records
// feedback replies.
type FeedbackRepository interface {
	// SCNOByPhone maps a contact phone number onto its client. ok is
	// false for unknown numbers.
	SCNOByPhone(ctx context.Context, phone string) (scno string, ok bool, err error)

	// Record upserts a client's reply for the day; a later reply on
	// the same day overwrites the earlier one.
	Record(ctx context.Context, response FeedbackResponse) error
}
