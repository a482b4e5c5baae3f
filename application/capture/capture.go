// Package capture re-snapshots page state after every dispatched command.
package capture

import (
	"context"

	"github.com/sirupsen/logrus"

	"web_controller/domain/interfaces"
)

// Capturer writes the screenshot and page markup artifacts.
type Capturer struct {
	browser interfaces.BrowserController
	store   interfaces.ArtifactStore
	logger  logrus.FieldLogger
}

// NewCapturer creates a capturer for browser's page.
func NewCapturer(browser interfaces.BrowserController, store interfaces.ArtifactStore, logger logrus.FieldLogger) *Capturer {
	return &Capturer{
		browser: browser,
		store:   store,
		logger:  logger,
	}
}

// Capture never fails: each artifact that cannot be produced is logged and
// skipped, leaving the previous generation on disk.
func (c *Capturer) Capture(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithField("panic", r).Error("Artifact capture aborted")
		}
	}()

	if shot, err := c.browser.Screenshot(ctx); err != nil {
		c.logger.WithError(err).Warn("Screenshot failed")
	} else if err := c.store.SaveScreenshot(shot); err != nil {
		c.logger.WithError(err).Warn("Saving screenshot failed")
	} else {
		c.logger.Debug("Screenshot saved")
	}

	if html, err := c.browser.Content(ctx); err != nil {
		c.logger.WithError(err).Warn("Reading page content failed")
	} else if err := c.store.SavePage(html); err != nil {
		c.logger.WithError(err).Warn("Saving page content failed")
	} else {
		c.logger.Debug("Page HTML saved as text")
	}
}
