//go:build windows

package ustream

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// cpUTF8 is the UTF-8 code page identifier.
const cpUTF8 = 65001

var (
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleCP       = kernel32.NewProc("GetConsoleCP")
	procSetConsoleCP       = kernel32.NewProc("SetConsoleCP")
	procGetConsoleOutputCP = kernel32.NewProc("GetConsoleOutputCP")
	procSetConsoleOutputCP = kernel32.NewProc("SetConsoleOutputCP")
)

// ConsoleState holds the console code pages saved by EnableUTF8Console.
type ConsoleState struct {
	inCP, outCP uint32
}

// EnableUTF8Console switches the attached console's input and output
// code pages to UTF-8 and returns the saved state. Console code pages
// are process-wide, so pair every acquisition with a deterministic
// release:
//
//	state, err := ustream.EnableUTF8Console()
//	if err != nil {
//		return err
//	}
//	defer state.Restore()
//
// Nested acquisitions must be restored in reverse order. A code page
// that is already UTF-8 or cannot be queried (0) is left alone.
func EnableUTF8Console() (*ConsoleState, error) {
	in, _, _ := procGetConsoleCP.Call()
	out, _, _ := procGetConsoleOutputCP.Call()
	s := &ConsoleState{inCP: uint32(in), outCP: uint32(out)}
	if s.inCP != cpUTF8 && s.inCP != 0 {
		if ok, _, err := procSetConsoleCP.Call(uintptr(cpUTF8)); ok == 0 {
			return nil, fmt.Errorf("ustream: SetConsoleCP: %w", err)
		}
	}
	if s.outCP != cpUTF8 && s.outCP != 0 {
		if ok, _, err := procSetConsoleOutputCP.Call(uintptr(cpUTF8)); ok == 0 {
			// Roll the input page back before failing.
			_ = s.Restore()
			return nil, fmt.Errorf("ustream: SetConsoleOutputCP: %w", err)
		}
	}
	return s, nil
}

// Restore puts the console code pages back to their saved values. It is
// safe to call more than once.
func (s *ConsoleState) Restore() error {
	var firstErr error
	if s.inCP != cpUTF8 && s.inCP != 0 {
		if ok, _, err := procSetConsoleCP.Call(uintptr(s.inCP)); ok == 0 {
			firstErr = fmt.Errorf("ustream: SetConsoleCP: %w", err)
		}
	}
	if s.outCP != cpUTF8 && s.outCP != 0 {
		if ok, _, err := procSetConsoleOutputCP.Call(uintptr(s.outCP)); ok == 0 && firstErr == nil {
			firstErr = fmt.Errorf("ustream: SetConsoleOutputCP: %w", err)
		}
	}
	return firstErr
}
