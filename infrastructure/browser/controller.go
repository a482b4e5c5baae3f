package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"web_controller/domain/entities"
	"web_controller/domain/interfaces"
)

// Options controls how the browser session is launched
type Options struct {
	Headless bool
	// NavigationTimeoutMs bounds page.goto
	NavigationTimeoutMs float64
	// ActionTimeoutMs bounds click and fill
	ActionTimeoutMs float64
}

type browserController struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	opts    Options
	logger  logrus.FieldLogger
}

// NewBrowserController - launches the browser and opens the session page
func NewBrowserController(opts Options, logger logrus.FieldLogger) (interfaces.BrowserController, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-popup-blocking",
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--disable-infobars",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		logger.WithField("message", dialog.Message()).Info("Accepting page dialog")
		dialog.Accept()
	})

	return &browserController{
		pw:      pw,
		browser: browser,
		context: browserCtx,
		page:    page,
		opts:    opts,
		logger:  logger,
	}, nil
}

// Navigate - navigates to the specified URL
func (b *browserController) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(b.opts.NavigationTimeoutMs),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return fmt.Errorf("%w: %s: %w", entities.ErrNavigationTimeout, url, err)
		}
		return fmt.Errorf("%w: open_url %s: %w", entities.ErrActionFailed, url, err)
	}
	return nil
}

// Click - clicks the first element matching the selector
func (b *browserController) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(b.opts.ActionTimeoutMs),
	})
	if err != nil {
		return fmt.Errorf("%w: click %s: %w", entities.ErrActionFailed, selector, err)
	}
	return nil
}

// Fill - replaces the value of an input field
func (b *browserController) Fill(ctx context.Context, selector string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.page.Locator(selector).Fill(text, playwright.LocatorFillOptions{
		Timeout: playwright.Float(b.opts.ActionTimeoutMs),
	})
	if err != nil {
		return fmt.Errorf("%w: fill %s: %w", entities.ErrActionFailed, selector, err)
	}
	return nil
}

// Screenshot - takes a full-page screenshot
func (b *browserController) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := b.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %w", entities.ErrCaptureFailed, err)
	}
	return data, nil
}

// Content - returns the full serialized page markup
func (b *browserController) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	html, err := b.page.Content()
	if err != nil {
		return "", fmt.Errorf("%w: page content: %w", entities.ErrCaptureFailed, err)
	}
	return html, nil
}

// Close - closes the browser and stops playwright
func (b *browserController) Close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil && !isClosedError(err) {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
		b.context = nil
	}

	if b.browser != nil {
		if err := b.browser.Close(); err != nil && !isClosedError(err) {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
		b.browser = nil
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		b.pw = nil
	}

	return errors.Join(errs...)
}

// isClosedError - reports errors caused by an already closed target
func isClosedError(err error) bool {
	return strings.Contains(err.Error(), "closed")
}
