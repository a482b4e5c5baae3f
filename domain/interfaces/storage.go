package interfaces

import "web_controller/domain/entities"

// ArtifactStore persists session artifacts
type ArtifactStore interface {
	// ResetLog truncates the command log
	ResetLog() error

	// AppendCommand appends a timestamped command line to the log
	AppendCommand(cmd string) error

	// SaveScreenshot overwrites the screenshot artifact
	SaveScreenshot(data []byte) error

	// SavePage overwrites the page markup artifact
	SavePage(html string) error

	// Attachments returns the artifacts that currently exist
	Attachments() []entities.Attachment
}
