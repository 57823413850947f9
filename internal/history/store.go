package history

import (
	"context"

	"ratemate/internal/models"
)

// Store keeps a bounded, ordered conversation history per session id.
// Implementations trim to their cap after every append, oldest turns first.
type Store interface {
	// Get returns the stored turns for the session, empty when absent.
	Get(ctx context.Context, sessionID string) ([]models.Turn, error)
	// Append adds turns to the session history and trims to the cap.
	Append(ctx context.Context, sessionID string, turns ...models.Turn) error
}

func trimTurns(turns []models.Turn, cap int) []models.Turn {
	if cap <= 0 || len(turns) <= cap {
		return turns
	}
	return turns[len(turns)-cap:]
}
