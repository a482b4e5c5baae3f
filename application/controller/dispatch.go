package controller

import (
	"context"
	"errors"

	"web_controller/application/command"
	"web_controller/domain/entities"
)

type outcome int

const (
	outcomeContinue outcome = iota
	outcomeExit
	outcomeBreakLoop
)

// dispatch decodes and executes one command string. Artifacts are captured
// afterwards whatever happened, including decode and execution failures.
func (c *Controller) dispatch(ctx context.Context, line string) outcome {
	defer c.capturer.Capture(ctx)

	cmd, err := command.Parse(line)
	if err != nil {
		c.report(err)
		if errors.Is(err, entities.ErrUnknownCommand) && !c.state.Automated {
			c.console.Printf("%s", commandHelp)
		}
		return outcomeContinue
	}

	switch cmd := cmd.(type) {
	case command.Exit:
		return outcomeExit
	case command.BreakLoop:
		c.state.EnterManual()
		c.console.Printf("Automated polling stopped.\n")
		return outcomeBreakLoop
	default:
		if err := c.execute(ctx, cmd); err != nil {
			c.report(err)
		}
		return outcomeContinue
	}
}

func (c *Controller) execute(ctx context.Context, cmd command.Command) error {
	switch cmd := cmd.(type) {
	case command.OpenURL:
		if err := c.browser.Navigate(ctx, cmd.URL); err != nil {
			return err
		}
		c.console.Printf("Opened URL: %s\n", cmd.URL)

	case command.ClickElement:
		query, err := entities.ResolveSelector(cmd.Selector)
		if err != nil {
			return err
		}
		if err := c.browser.Click(ctx, query); err != nil {
			return err
		}
		c.console.Printf("Clicked element: %s\n", cmd.Selector)

	case command.SendKeys:
		query, err := entities.ResolveSelector(cmd.Selector)
		if err != nil {
			return err
		}
		if err := c.browser.Fill(ctx, query, cmd.Text); err != nil {
			return err
		}
		c.console.Printf("Sent keys to %s: '%s'\n", cmd.Selector, cmd.Text)
	}
	return nil
}

// report tells the operator what failed, by category.
func (c *Controller) report(err error) {
	c.logger.WithError(err).Warn("Command failed")

	switch {
	case errors.Is(err, entities.ErrUnknownCommand):
		c.console.Printf("Unknown command: %v\n", err)
	case errors.Is(err, entities.ErrMalformedCommand):
		c.console.Printf("Malformed command: %v\n", err)
	case errors.Is(err, entities.ErrInvalidSelector):
		c.console.Printf("Invalid selector: %v\n", err)
	case errors.Is(err, entities.ErrNavigationTimeout):
		c.console.Printf("Navigation timeout: %v\n", err)
	default:
		c.console.Printf("Action failed: %v\n", err)
	}
}
