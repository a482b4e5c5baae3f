package interfaces

import "context"

// AI represents the external agent that proposes the next actions
type AI interface {
	// Ask sends the instruction text with the current session artifacts and
	// returns the raw reply. An empty reply means no answer was obtained.
	Ask(ctx context.Context, prompt string) (string, error)
}
