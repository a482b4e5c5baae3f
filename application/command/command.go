// Package command converts between agent actions, command strings and
// dispatchable commands.
package command

import (
	"fmt"
	"strings"

	"web_controller/domain/entities"
)

// Command is a parsed command string. The concrete types are OpenURL,
// ClickElement, SendKeys, Exit and BreakLoop.
type Command interface {
	fmt.Stringer

	// Action returns the structured action the command carries
	Action() entities.Action
	isCommand()
}

type OpenURL struct {
	URL string
}

type ClickElement struct {
	Selector string
}

type SendKeys struct {
	Selector string
	Text     string
}

type Exit struct{}

type BreakLoop struct{}

func (c OpenURL) String() string      { return "open_url(" + c.URL + ")" }
func (c ClickElement) String() string { return "click_element(" + c.Selector + ")" }
func (c SendKeys) String() string     { return "send_keys(" + c.Selector + ", text=" + c.Text + ")" }
func (Exit) String() string           { return "exit" }
func (BreakLoop) String() string      { return "break_loop" }

func (c OpenURL) Action() entities.Action {
	return entities.Action{Name: entities.ActionOpenURL, Args: []string{c.URL}}
}

func (c ClickElement) Action() entities.Action {
	return entities.Action{Name: entities.ActionClickElement, Args: []string{c.Selector}}
}

func (c SendKeys) Action() entities.Action {
	return entities.Action{Name: entities.ActionSendKeys, Args: []string{c.Selector, c.Text}}
}

func (Exit) Action() entities.Action {
	return entities.Action{Name: entities.ActionExit, Args: []string{}}
}

func (BreakLoop) Action() entities.Action {
	return entities.Action{Name: entities.ActionBreakLoop, Args: []string{}}
}

func (OpenURL) isCommand()      {}
func (ClickElement) isCommand() {}
func (SendKeys) isCommand()     {}
func (Exit) isCommand()         {}
func (BreakLoop) isCommand()    {}

// FromAction builds the command for a, or reports false when a is a noop,
// has an unknown name, or carries too few args. Extra args are ignored.
func FromAction(a entities.Action) (Command, bool) {
	switch a.Name {
	case entities.ActionOpenURL:
		if len(a.Args) >= 1 {
			return OpenURL{URL: a.Args[0]}, true
		}
	case entities.ActionClickElement:
		if len(a.Args) >= 1 {
			return ClickElement{Selector: a.Args[0]}, true
		}
	case entities.ActionSendKeys:
		if len(a.Args) >= 2 {
			return SendKeys{Selector: a.Args[0], Text: a.Args[1]}, true
		}
	case entities.ActionExit:
		return Exit{}, true
	case entities.ActionBreakLoop:
		return BreakLoop{}, true
	}
	return nil, false
}

// Encode returns the command string for a. An empty result means the action
// must be skipped: it is neither logged nor dispatched.
func Encode(a entities.Action) string {
	cmd, ok := FromAction(a)
	if !ok {
		return ""
	}
	return cmd.String()
}

// Parse decodes a command string. Unrecognized input yields ErrUnknownCommand;
// a send_keys missing its selector or text yields ErrMalformedCommand.
func Parse(s string) (Command, error) {
	switch {
	case s == "exit":
		return Exit{}, nil
	case s == "break_loop":
		return BreakLoop{}, nil
	}

	if inner, ok := call(s, "open_url"); ok {
		return OpenURL{URL: inner}, nil
	}
	if inner, ok := call(s, "click_element"); ok {
		return ClickElement{Selector: inner}, nil
	}
	if inner, ok := call(s, "send_keys"); ok {
		return parseSendKeys(inner)
	}

	return nil, fmt.Errorf("%w: %s", entities.ErrUnknownCommand, s)
}

// call matches "name(inner)" and returns inner verbatim.
func call(s, name string) (string, bool) {
	prefix := name + "("
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, ")") {
		return "", false
	}
	return s[len(prefix) : len(s)-1], true
}

const textTag = "text="

// parseSendKeys accepts "sel, text=value" and "sel, value". Only the first
// comma separates the selector, so commas inside the value survive. Without
// any comma the fragments are scanned for a selector and a text= fragment.
func parseSendKeys(inner string) (Command, error) {
	var (
		sel, text       string
		hasSel, hasText bool
	)

	if before, after, ok := strings.Cut(inner, ","); ok {
		sel = strings.TrimSpace(before)
		text = strings.TrimPrefix(strings.TrimSpace(after), textTag)
		hasSel, hasText = sel != "", true
	} else {
		for _, part := range strings.Split(inner, ",") {
			part = strings.TrimSpace(part)
			switch {
			case !hasText && strings.HasPrefix(part, textTag):
				text, hasText = strings.TrimPrefix(part, textTag), true
			case !hasSel && strings.Contains(part, "="):
				sel, hasSel = part, true
			}
		}
	}

	if !hasSel || !hasText {
		return nil, fmt.Errorf("%w: send_keys format: send_keys(type=value, text=yourtext)", entities.ErrMalformedCommand)
	}
	return SendKeys{Selector: sel, Text: text}, nil
}
