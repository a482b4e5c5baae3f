package controller

import (
	"context"
	"strings"
)

// negotiateExit asks whether there is more to do. It returns true to keep
// running in the current mode, or false after releasing the browser.
func (c *Controller) negotiateExit(ctx context.Context) (bool, error) {
	for {
		ans, err := c.console.Prompt(ctx, "Exit requested. Is there anything else to be done? (y = yes, n = no): ")
		if err != nil {
			return false, err
		}

		switch strings.ToLower(ans) {
		case "y", "yes":
			task, err := c.console.Prompt(ctx, "Enter the additional high-level task (leave blank to keep previous): ")
			if err != nil {
				return false, err
			}
			if c.state.ReplaceTask(task) {
				c.logger.WithField("task", c.state.Task).Info("Task updated")
			}
			c.console.Printf("Resuming with task: %s\n", c.state.Task)
			return true, nil

		case "n", "no":
			c.release()
			return false, nil

		default:
			c.console.Printf("Please enter 'y' or 'n'.\n")
		}
	}
}
