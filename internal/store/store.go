// ABOUTME: Journal interface and entry types for the local record of admin operations
// ABOUTME: Defines Entry, Filter and the actions synadminctl records

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entry does not exist
var ErrNotFound = errors.New("not found")

// Action names an operation recorded in the journal.
type Action string

const (
	ActionLogin               Action = "login"
	ActionLogout              Action = "logout"
	ActionCreateModifyAccount Action = "create_modify_account"
	ActionResetPassword       Action = "reset_password"
	ActionPurgeRoom           Action = "purge_room"
	ActionDeactivateAccount   Action = "deactivate_account"
)

// ValidActions lists all journaled actions.
var ValidActions = []Action{
	ActionLogin,
	ActionLogout,
	ActionCreateModifyAccount,
	ActionResetPassword,
	ActionPurgeRoom,
	ActionDeactivateAccount,
}

// Outcome values
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Target types
const (
	TargetUser    = "user"
	TargetRoom    = "room"
	TargetSession = "session"
)

// Entry is one journaled operation.
type Entry struct {
	ID         string         `json:"id"`          // UUID v4
	Actor      string         `json:"actor"`       // user ID of the logged-in admin
	Homeserver string         `json:"homeserver"`  // base URL the call went to
	Action     Action         `json:"action"`      // what was done
	TargetType string         `json:"target_type"` // "user", "room", "session"
	TargetID   string         `json:"target_id"`   // ID of the affected resource
	Timestamp  time.Time      `json:"timestamp"`   // when it happened
	Outcome    string         `json:"outcome"`     // OutcomeOK or OutcomeFailed
	Detail     map[string]any `json:"detail,omitempty"`
}

// Filter specifies filtering options for listing entries.
type Filter struct {
	Since    *time.Time // entries at or after this time
	Until    *time.Time // entries at or before this time
	Action   *Action
	TargetID *string
	Limit    int // max results (default 100, max 1000)
}

// Journal records admin operations.
type Journal interface {
	Append(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, f Filter) ([]Entry, error)
	Close() error
}

// IsValidAction reports whether a is one of ValidActions.
func IsValidAction(a Action) bool {
	for _, v := range ValidActions {
		if v == a {
			return true
		}
	}
	return false
}
