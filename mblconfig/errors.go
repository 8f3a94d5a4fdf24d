package mblconfig

import "fmt"

// ConfigError signals an invalid option value or an inconsistent
// combination (§7).
type ConfigError struct {
	Key string
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Msg)
}

// StateError signals an operation attempted in the wrong phase (§7), e.g.
// Set after Freeze, or classify before learn.
type StateError struct {
	Op    string
	Phase State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state: %s not allowed in phase %v", e.Op, e.Phase)
}

func (s State) String() string {
	switch s {
	case StateLearning:
		return "Learning"
	case StateReady:
		return "Ready"
	case StateTesting:
		return "Testing"
	default:
		return "Unknown"
	}
}
