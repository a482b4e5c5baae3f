// Package controller runs the agent-driven browser control loop.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"web_controller/application/capture"
	"web_controller/application/command"
	"web_controller/domain/entities"
	"web_controller/domain/interfaces"
)

// Delays are the fixed pauses between rounds.
type Delays struct {
	EmptyReply time.Duration
	BadReply   time.Duration
	AfterBatch time.Duration
	Rejected   time.Duration
}

// Controller owns the browser session for the whole process lifetime.
type Controller struct {
	ai       interfaces.AI
	browser  interfaces.BrowserController
	store    interfaces.ArtifactStore
	console  interfaces.Console
	capturer *capture.Capturer
	logger   logrus.FieldLogger
	delays   Delays

	state     State
	closeOnce sync.Once
}

func NewController(
	ai interfaces.AI,
	browser interfaces.BrowserController,
	store interfaces.ArtifactStore,
	console interfaces.Console,
	delays Delays,
	logger logrus.FieldLogger,
) *Controller {
	return &Controller{
		ai:       ai,
		browser:  browser,
		store:    store,
		console:  console,
		capturer: capture.NewCapturer(browser, store, logger),
		logger:   logger,
		delays:   delays,
	}
}

// State returns a copy of the current loop state.
func (c *Controller) State() State {
	return c.state
}

// Run asks for the goal, prepares the session and drives the loop until the
// operator declines to continue after an exit request. The browser is
// released exactly once on every return path.
func (c *Controller) Run(ctx context.Context) error {
	defer c.release()

	task, err := c.askGoal(ctx)
	if err != nil {
		return err
	}
	c.state = NewState(task)

	if err := c.store.ResetLog(); err != nil {
		c.logger.WithError(err).Warn("Could not clear commands log at session start")
	} else {
		c.console.Printf("Cleared commands log for this session\n")
	}

	c.capturer.Capture(ctx)
	c.console.Printf("%s", commandHelp)

	autoconfirm, err := c.askYesNo(ctx, "Enable autoconfirm (auto-execute agent suggestions) at startup? (y/n): ")
	if err != nil {
		return err
	}
	c.state.SetAutoconfirm(autoconfirm)

	c.logger.WithFields(logrus.Fields{
		"task":        c.state.Task,
		"autoconfirm": c.state.Autoconfirm,
	}).Info("Starting automated agent loop")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var stop bool
		if c.state.Automated {
			stop, err = c.automatedStep(ctx)
		} else {
			stop, err = c.manualStep(ctx)
		}
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// automatedStep runs one agent round: ask, parse, apply the mode policy.
func (c *Controller) automatedStep(ctx context.Context) (bool, error) {
	c.console.Printf("\nAsking the agent what to do next...\n")

	reply, err := c.ai.Ask(ctx, BuildInstructions(c.state.Task))
	if ctx.Err() != nil {
		return true, ctx.Err()
	}
	if err != nil || reply == "" {
		c.console.Printf("No reply from the agent. Retrying in %s...\n", c.delays.EmptyReply)
		return false, c.sleep(ctx, c.delays.EmptyReply)
	}

	actions, err := command.ParseReply(reply)
	if err != nil {
		c.logger.WithError(err).WithField("reply", reply).Warn("Unusable agent reply")
		c.console.Printf("Could not use the agent reply: %v\n", err)
		return false, c.sleep(ctx, c.delays.BadReply)
	}

	c.console.Printf("\nThe agent suggested the following action(s):\n")
	for i, a := range actions {
		c.console.Printf("  %d. %s\n", i+1, a)
	}

	actions = c.takeBreakLoop(actions)
	if len(actions) == 0 {
		return false, nil
	}

	if c.state.Autoconfirm {
		c.console.Printf("Autoconfirm is ON, executing the agent's actions automatically.\n")
		if stop, err := c.executeBatch(ctx, actions); stop || err != nil {
			return stop, err
		}
		return false, c.sleep(ctx, c.delays.AfterBatch)
	}

	return c.approveBatch(ctx, actions)
}

// takeBreakLoop drops break_loop entries, switching to manual mode if any
// were present, and returns the rest of the batch.
func (c *Controller) takeBreakLoop(actions []entities.Action) []entities.Action {
	rest := make([]entities.Action, 0, len(actions))
	for _, a := range actions {
		if a.Name == entities.ActionBreakLoop {
			continue
		}
		rest = append(rest, a)
	}

	if len(rest) != len(actions) {
		c.state.EnterManual()
		c.console.Printf("The agent requested to break the automated loop. Stopping automated polling.\n")
	}
	return rest
}

func (c *Controller) approveBatch(ctx context.Context, actions []entities.Action) (bool, error) {
	for {
		choice, err := c.console.Prompt(ctx, "Approve and execute these actions? (y = yes, n = no, m = manual, a = toggle autoconfirm, e = exit): ")
		if err != nil {
			return true, err
		}

		switch strings.ToLower(choice) {
		case "y":
			if stop, err := c.executeBatch(ctx, actions); stop || err != nil {
				return stop, err
			}
			return false, c.sleep(ctx, c.delays.AfterBatch)

		case "n":
			c.console.Printf("Suggestion rejected. Asking again in %s...\n", c.delays.Rejected)
			return false, c.sleep(ctx, c.delays.Rejected)

		case "m":
			c.state.EnterManual()
			c.console.Printf("Switched to manual mode. Type commands or 'auto' to resume the automated loop.\n")
			return false, nil

		case "a":
			on := c.state.ToggleAutoconfirm()
			c.console.Printf("Autoconfirm set to %t\n", on)

		case "e", "exit":
			cont, err := c.negotiateExit(ctx)
			if err != nil {
				return true, err
			}
			if !cont {
				return true, nil
			}

		default:
			c.console.Printf("Please enter y, n, m, a, or e.\n")
		}
	}
}

// executeBatch encodes, logs and dispatches each action in order. It stops
// early only when an exit request ends the session.
func (c *Controller) executeBatch(ctx context.Context, actions []entities.Action) (bool, error) {
	for _, a := range actions {
		line := command.Encode(a)
		if line == "" {
			c.console.Printf("Skipping unsupported or empty action: %s\n", a)
			continue
		}

		c.console.Printf("Executing agent action: %s\n", line)
		if stop, err := c.runCommand(ctx, line); stop || err != nil {
			return stop, err
		}
	}
	return false, nil
}

func (c *Controller) manualStep(ctx context.Context) (bool, error) {
	line, err := c.console.Prompt(ctx, "Manual command (or 'auto' to resume): ")
	if err != nil {
		return true, err
	}

	if line == "" {
		return false, nil
	}

	if line == "auto" {
		c.state.EnterAutomated()
		c.console.Printf("Resuming the automated agent loop...\n")
		return false, nil
	}

	if on, ok := parseAutoconfirm(line); ok {
		c.state.SetAutoconfirm(on)
		c.console.Printf("Autoconfirm set to %t\n", on)
		return false, nil
	}

	return c.runCommand(ctx, line)
}

// parseAutoconfirm recognizes "autoconfirm on" and "autoconfirm off".
func parseAutoconfirm(line string) (bool, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "autoconfirm" {
		return false, false
	}
	switch strings.ToLower(fields[1]) {
	case "on":
		return true, true
	case "off":
		return false, true
	default:
		return false, false
	}
}

// runCommand logs line, dispatches it and handles a resulting exit request.
// It reports true when the session must end.
func (c *Controller) runCommand(ctx context.Context, line string) (bool, error) {
	if err := c.store.AppendCommand(line); err != nil {
		c.logger.WithError(err).Warn("Failed to append to commands log")
	}

	if c.dispatch(ctx, line) != outcomeExit {
		return false, nil
	}

	cont, err := c.negotiateExit(ctx)
	if err != nil {
		return true, err
	}
	return !cont, nil
}

func (c *Controller) askGoal(ctx context.Context) (string, error) {
	for {
		goal, err := c.console.Prompt(ctx, "What is your goal? ")
		if err != nil {
			return "", err
		}
		if goal != "" {
			return goal, nil
		}
	}
}

func (c *Controller) askYesNo(ctx context.Context, question string) (bool, error) {
	for {
		ans, err := c.console.Prompt(ctx, question)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(ans) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		c.console.Printf("Please enter 'y' or 'n'.\n")
	}
}

func (c *Controller) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Close releases the browser session if Run has not already done so.
func (c *Controller) Close() {
	c.release()
}

// release closes the browser session once.
func (c *Controller) release() {
	c.closeOnce.Do(func() {
		if err := c.browser.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close browser")
			return
		}
		c.logger.Info("Browser closed")
	})
}
