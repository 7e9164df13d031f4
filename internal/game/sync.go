package game

import (
	"context"
	"errors"
)

// SyncReplayRow is the outcome of one replayed offline command.
type SyncReplayRow struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ReplaySync applies a batch of commands a client queued while offline.
// Each command stands alone: a failed command is reported and skipped,
// the rest still apply. Duplicate idempotency keys count as success so a
// retried sync never errors on work that already landed.
func (s *Service) ReplaySync(ctx context.Context, userID string, commands []map[string]any) ([]SyncReplayRow, error) {
	out := make([]SyncReplayRow, 0, len(commands))
	for i, cmd := range commands {
		typ, _ := cmd["type"].(string)
		row := SyncReplayRow{Index: i, Type: typ}

		var err error
		switch typ {
		case "click":
			clicks := int64(1)
			if v, ok := cmd["clicks"].(float64); ok && v > 0 {
				clicks = int64(v)
			}
			_, err = s.Click(ctx, ClickInput{UserID: userID, Clicks: clicks})
		case "idle_collect":
			_, err = s.CollectIdleIncome(ctx, userID)
		case "business_collect":
			id, ok := cmd["business_id"].(float64)
			if !ok {
				err = errors.New("business_id is required")
				break
			}
			_, err = s.CollectBusinessIncome(ctx, userID, int64(id))
		default:
			err = errors.New("unknown command type")
		}

		if err != nil && !errors.Is(err, ErrDuplicateIdempotency) {
			row.Error = err.Error()
		} else {
			row.OK = true
		}
		out = append(out, row)
	}
	return out, nil
}
