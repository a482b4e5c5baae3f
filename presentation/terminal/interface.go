package terminal

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"web_controller/application/controller"
	"web_controller/domain/interfaces"
	"web_controller/infrastructure/ai"
	"web_controller/infrastructure/browser"
	"web_controller/infrastructure/config"
	"web_controller/infrastructure/relay"
	"web_controller/infrastructure/storage"
)

type TerminalInterface struct {
	cfg     *config.Config
	ctrl    *controller.Controller
	console interfaces.Console
	logger  logrus.FieldLogger
}

// NewTerminalInterface - loads settings and assembles the controller
func NewTerminalInterface() (*TerminalInterface, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)

	store, err := storage.NewArtifactStore(cfg.ArtifactDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare artifact directory: %w", err)
	}

	browserCtrl, err := browser.NewBrowserController(browser.Options{
		Headless:            cfg.BrowserHeadless,
		NavigationTimeoutMs: float64(cfg.BrowserNavTimeout.Milliseconds()),
		ActionTimeoutMs:     float64(cfg.BrowserActionTimeout.Milliseconds()),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	client := relay.NewClient(cfg.RelayAddr, cfg.RelayPath, cfg.RelayDialTimeout, logger)
	agent := ai.NewRelayAgent(client, store, logger)
	operator := NewConsole(os.Stdin, os.Stdout)

	ctrl := controller.NewController(agent, browserCtrl, store, operator, controller.Delays{
		EmptyReply: cfg.Delays.EmptyReply,
		BadReply:   cfg.Delays.BadReply,
		AfterBatch: cfg.Delays.AfterBatch,
		Rejected:   cfg.Delays.Rejected,
	}, logger)

	logger.WithField("relay", client.URL()).Info("Controller ready")

	return &TerminalInterface{
		cfg:     cfg,
		ctrl:    ctrl,
		console: operator,
		logger:  logger,
	}, nil
}

func newLogger(cfg *config.Config) logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger.WithField("session", uuid.NewString())
}

// Run - serves the embedded relay bridge, if enabled, for as long as the
// control loop runs
func (t *TerminalInterface) Run(ctx context.Context) error {
	t.console.Printf("Web Controller\n")
	t.console.Printf("==============\n")

	g, ctx := errgroup.WithContext(ctx)
	bridgeCtx, stopBridge := context.WithCancel(ctx)
	defer stopBridge()

	if t.cfg.RelayEmbedBridge {
		server, err := relay.Listen(t.cfg.RelayAddr, t.cfg.RelayPath, relay.NewBridge(t.logger), t.logger)
		if err != nil {
			// another bridge may already be serving this address
			t.logger.WithError(err).Warn("Embedded relay bridge not started")
		} else {
			g.Go(t.serveBridge(bridgeCtx, server))
		}
	}

	g.Go(func() error {
		defer stopBridge()
		return t.ctrl.Run(ctx)
	})

	return g.Wait()
}

type bridgeServer interface {
	Serve(ctx context.Context) error
}

// serveBridge - runs the bridge until ctx ends. A bridge fault is logged and
// never stops the control loop.
func (t *TerminalInterface) serveBridge(ctx context.Context, server bridgeServer) func() error {
	return func() error {
		if err := server.Serve(ctx); err != nil {
			t.logger.WithError(err).Error("Embedded relay bridge stopped")
		}
		return nil
	}
}

// Close - releases the browser if the loop did not already
func (t *TerminalInterface) Close() error {
	t.ctrl.Close()
	return nil
}
