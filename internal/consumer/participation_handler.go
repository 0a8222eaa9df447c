package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"example.com/sahakari/internal/events"
)

// Reloader refreshes the reports affected by a changed record.
type Reloader interface {
	ReloadMatching(ctx context.Context, date *time.Time, branch string) (int, error)
}

// ParticipationHandler reloads reports when participation records change.
type ParticipationHandler struct {
	reloader Reloader
}

// NewParticipationHandler constructs a ParticipationHandler.
func NewParticipationHandler(reloader Reloader) *ParticipationHandler {
	return &ParticipationHandler{reloader: reloader}
}

// Handle implements Handler. Messages of other event types are ignored.
func (h *ParticipationHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != events.TypeParticipationChanged {
		return nil
	}

	var evt events.ParticipationChanged
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("decode %s: %w", msg.EventType, err)
	}
	date, err := evt.Day()
	if err != nil {
		// Without a usable date every year is considered affected.
		date = nil
	}

	n, err := h.reloader.ReloadMatching(ctx, date, evt.Branch)
	recordReloads(n)
	return err
}
