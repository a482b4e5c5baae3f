package interfaces

import "context"

// BrowserController defines the browser engine calls the controller issues.
// Selectors are engine queries, already resolved from the typed grammar.
type BrowserController interface {
	// Navigate navigates to a URL
	Navigate(ctx context.Context, url string) error

	// Click clicks the first element matching selector
	Click(ctx context.Context, selector string) error

	// Fill replaces the value of the element matching selector
	Fill(ctx context.Context, selector string, text string) error

	// Screenshot takes a full-page screenshot
	Screenshot(ctx context.Context) ([]byte, error)

	// Content returns the serialized page markup
	Content(ctx context.Context) (string, error)

	// Close releases the browser session
	Close() error
}
