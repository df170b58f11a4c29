package socket

import (
	"strings"

	ps "github.com/mitchellh/go-ps"
)

var _ ProcessChecker = (*DefaultProcessChecker)(nil)

// ProcessChecker reports whether a process with a given name is running.
type ProcessChecker interface {
	IsRunning(name string) bool
}

// DefaultProcessChecker checks the OS process table via go-ps.
type DefaultProcessChecker struct{}

// IsRunning reports whether any running executable starts with name,
// compared case-insensitively.
func (pc *DefaultProcessChecker) IsRunning(name string) bool {
	procs, err := ps.Processes()
	if err != nil {
		return false
	}

	for _, proc := range procs {
		if exe := proc.Executable(); len(exe) >= len(name) {
			if strings.EqualFold(exe[:len(name)], name) {
				return true
			}
		}
	}
	return false
}
