package entities

import (
	"encoding/json"
	"strings"
)

// ActionName represents the type of action the agent can request
type ActionName string

const (
	ActionOpenURL      ActionName = "open_url"
	ActionClickElement ActionName = "click_element"
	ActionSendKeys     ActionName = "send_keys"
	ActionExit         ActionName = "exit"
	ActionBreakLoop    ActionName = "break_loop"
	ActionNoop         ActionName = "noop"
)

// Arity returns the number of args the action requires, or -1 for unknown names.
func (n ActionName) Arity() int {
	switch n {
	case ActionOpenURL, ActionClickElement:
		return 1
	case ActionSendKeys:
		return 2
	case ActionExit, ActionBreakLoop, ActionNoop:
		return 0
	default:
		return -1
	}
}

// Action represents a single operation proposed by the agent
type Action struct {
	Name ActionName `json:"action"`
	Args []string   `json:"args"`
}

// UnmarshalJSON accepts non-string args and keeps their JSON text.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name ActionName        `json:"action"`
		Args []json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.Name = raw.Name
	a.Args = make([]string, 0, len(raw.Args))
	for _, arg := range raw.Args {
		var s string
		if err := json.Unmarshal(arg, &s); err == nil {
			a.Args = append(a.Args, s)
			continue
		}
		a.Args = append(a.Args, strings.TrimSpace(string(arg)))
	}
	return nil
}

func (a Action) String() string {
	data, err := json.Marshal(a)
	if err != nil {
		return string(a.Name)
	}
	return string(data)
}
