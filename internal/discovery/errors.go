// ABOUTME: Discovery outcome classification: prompt, ignore, fail-prompt and fail-error
// ABOUTME: Callers use IsRecoverable and IsTerminal to decide between prompting and aborting

package discovery

import (
	"errors"
	"fmt"
)

// Kind classifies a failed discovery.
type Kind int

const (
	// KindPrompt: nothing usable was found; ask the user for a server.
	KindPrompt Kind = iota + 1
	// KindIgnore: this mechanism does not apply. Discover never returns it,
	// there being no other mechanism to try, and reports KindPrompt instead.
	KindIgnore
	// KindFailPrompt: discovery failed but the user may still supply a
	// server by hand.
	KindFailPrompt
	// KindFailError: a server was advertised but is unusable; abort.
	KindFailError
)

func (k Kind) String() string {
	switch k {
	case KindPrompt:
		return "PROMPT"
	case KindIgnore:
		return "IGNORE"
	case KindFailPrompt:
		return "FAIL_PROMPT"
	case KindFailError:
		return "FAIL_ERROR"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ErrIllegalTransition is returned when the machine is asked to move to a
// state that is not the successor of its current one.
var ErrIllegalTransition = errors.New("discovery: illegal state transition")

// Error is a classified discovery failure.
type Error struct {
	Kind   Kind
	State  State
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("discovery %s at %s", e.Kind, e.State)
	}
	return fmt.Sprintf("discovery %s at %s: %s", e.Kind, e.State, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a discovery error, or 0 when err is not one.
func KindOf(err error) Kind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return 0
}

// IsRecoverable reports whether the caller may fall back to prompting for a
// server URL.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case KindPrompt, KindIgnore, KindFailPrompt:
		return true
	}
	return false
}

// IsTerminal reports whether discovery must be abandoned.
func IsTerminal(err error) bool {
	return KindOf(err) == KindFailError
}
