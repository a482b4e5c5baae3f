package interfaces

import "context"

// Console is the operator-facing decision provider
type Console interface {
	// Prompt shows question and blocks for one line of input, trimmed
	Prompt(ctx context.Context, question string) (string, error)

	// Printf writes an operator message
	Printf(format string, args ...any)
}
