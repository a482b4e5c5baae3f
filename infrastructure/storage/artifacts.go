package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"web_controller/domain/entities"
	"web_controller/domain/interfaces"
)

const (
	ScreenshotFile = "screenshot.png"
	PageFile       = "page.txt"
	CommandsFile   = "commands.txt"

	// page markup is written here first and then renamed to PageFile
	pageHTMLFile = "page.html"

	timestampLayout = "2006-01-02T15:04:05.000000Z"
)

type artifactStore struct {
	dir    string
	logger logrus.FieldLogger
	now    func() time.Time
	logMu  sync.Mutex
}

// NewArtifactStore - creates the session artifact store rooted at dir
func NewArtifactStore(dir string, logger logrus.FieldLogger) (interfaces.ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	return &artifactStore{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *artifactStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// ResetLog - truncates the command log for a new session
func (s *artifactStore) ResetLog() error {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	if err := os.WriteFile(s.path(CommandsFile), nil, 0644); err != nil {
		return fmt.Errorf("failed to clear commands log: %w", err)
	}
	return nil
}

// AppendCommand - appends "[timestamp] cmd" to the command log
func (s *artifactStore) AppendCommand(cmd string) error {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	f, err := os.OpenFile(s.path(CommandsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open commands log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s\n", s.now().UTC().Format(timestampLayout), cmd)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append to commands log: %w", err)
	}
	return nil
}

// SaveScreenshot - overwrites the screenshot artifact
func (s *artifactStore) SaveScreenshot(data []byte) error {
	if err := os.WriteFile(s.path(ScreenshotFile), data, 0644); err != nil {
		return fmt.Errorf("%w: write screenshot: %v", entities.ErrCaptureFailed, err)
	}
	return nil
}

// SavePage - writes the markup as page.html, then renames it to page.txt
func (s *artifactStore) SavePage(html string) error {
	htmlPath := s.path(pageHTMLFile)
	if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("%w: write page html: %v", entities.ErrCaptureFailed, err)
	}
	if err := os.Rename(htmlPath, s.path(PageFile)); err != nil {
		return fmt.Errorf("%w: rename page html: %v", entities.ErrCaptureFailed, err)
	}
	return nil
}

// Attachments - returns the artifacts that exist, in page, screenshot, log order
func (s *artifactStore) Attachments() []entities.Attachment {
	attachments := make([]entities.Attachment, 0, 3)

	if data, err := os.ReadFile(s.path(PageFile)); err == nil {
		attachments = append(attachments, entities.Attachment{
			Name: PageFile,
			Type: "text/plain",
			Data: string(data),
		})
	} else {
		s.logger.WithError(err).Warnf("%s not found; skipping", PageFile)
	}

	if data, err := os.ReadFile(s.path(ScreenshotFile)); err == nil {
		attachments = append(attachments, entities.Attachment{
			Name:    ScreenshotFile,
			Type:    "image/png",
			DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		})
	} else {
		s.logger.WithError(err).Warnf("%s not found; skipping", ScreenshotFile)
	}

	s.logMu.Lock()
	data, err := os.ReadFile(s.path(CommandsFile))
	s.logMu.Unlock()
	if err == nil {
		attachments = append(attachments, entities.Attachment{
			Name: CommandsFile,
			Type: "text/plain",
			Data: string(data),
		})
	} else {
		s.logger.WithError(err).Infof("%s not found; skipping", CommandsFile)
	}

	return attachments
}
