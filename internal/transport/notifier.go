package transport

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nmikhailov/guessnum/internal/model"
)

// Notifier delivers notification payloads to participants. The chat transport
// implements this; the engine only produces recipient/text pairs.
type Notifier interface {
	Notify(ctx context.Context, notes []model.Notification)
}

// LogNotifier writes notifications to the log. It stands in when no real
// transport is attached (e.g. when driving the engine through the HTTP API).
type LogNotifier struct {
	logger *slog.Logger
}

// Ensure LogNotifier implements Notifier
var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each notification
func (n *LogNotifier) Notify(ctx context.Context, notes []model.Notification) {
	for _, note := range notes {
		n.logger.Info("notification",
			slog.String("recipient", string(note.Recipient)),
			slog.String("text", note.Text),
		)
	}
}

// RecordingNotifier captures notifications for tests
type RecordingNotifier struct {
	mu    sync.Mutex
	notes []model.Notification
}

// Ensure RecordingNotifier implements Notifier
var _ Notifier = (*RecordingNotifier)(nil)

// NewRecordingNotifier creates a RecordingNotifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Notify appends the notifications to the recorded list
func (n *RecordingNotifier) Notify(ctx context.Context, notes []model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, notes...)
}

// Sent returns a copy of everything recorded so far
func (n *RecordingNotifier) Sent() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Notification(nil), n.notes...)
}

// SentTo returns the texts recorded for one recipient
func (n *RecordingNotifier) SentTo(id model.UserID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var texts []string
	for _, note := range n.notes {
		if note.Recipient == id {
			texts = append(texts, note.Text)
		}
	}
	return texts
}

// Reset clears recorded notifications
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = nil
}
