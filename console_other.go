//go:build !windows

package ustream

// ConsoleState holds console state saved by EnableUTF8Console. Outside
// Windows there is nothing to save; terminals already speak UTF-8.
type ConsoleState struct{}

// EnableUTF8Console is a no-op outside Windows.
func EnableUTF8Console() (*ConsoleState, error) { return &ConsoleState{}, nil }

// Restore is a no-op outside Windows.
func (s *ConsoleState) Restore() error { return nil }
