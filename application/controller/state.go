package controller

import "strings"

// State is the loop mode and current task. It is only changed through its
// transition methods.
type State struct {
	Task        string
	Automated   bool
	Autoconfirm bool
}

// NewState starts in automated mode with autoconfirm off.
func NewState(task string) State {
	return State{Task: task, Automated: true}
}

func (s *State) EnterManual() {
	s.Automated = false
}

func (s *State) EnterAutomated() {
	s.Automated = true
}

func (s *State) SetAutoconfirm(on bool) {
	s.Autoconfirm = on
}

// ToggleAutoconfirm flips autoconfirm and returns the new value.
func (s *State) ToggleAutoconfirm() bool {
	s.Autoconfirm = !s.Autoconfirm
	return s.Autoconfirm
}

// ReplaceTask sets a new task unless task is blank, and reports whether it did.
func (s *State) ReplaceTask(task string) bool {
	task = strings.TrimSpace(task)
	if task == "" {
		return false
	}
	s.Task = task
	return true
}
