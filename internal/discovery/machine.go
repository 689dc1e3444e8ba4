// ABOUTME: Client well-known discovery as an explicit, strictly forward state machine
// ABOUTME: Each step consumes only the previous step's output; skipping or reordering is rejected

package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/florianjacob/synadminctl/internal/matrix"
	"github.com/florianjacob/synadminctl/internal/synapse"
)

// State is a step of the discovery sequence.
type State int

const (
	StateExtractHost State = iota
	StateFetchWellKnown
	StateParseHomeserverURL
	StateValidateHomeserver
	StateValidateIdentityServer
	StateSuccess
	StateFailed
)

var stateNames = map[State]string{
	StateExtractHost:            "ExtractHost",
	StateFetchWellKnown:         "FetchWellKnown",
	StateParseHomeserverURL:     "ParseHomeserverURL",
	StateValidateHomeserver:     "ValidateHomeserver",
	StateValidateIdentityServer: "ValidateIdentityServer",
	StateSuccess:                "Success",
	StateFailed:                 "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further step can run.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// successors lists the only states reachable from each state. Failed is
// reachable from every non-terminal state.
var successors = map[State][]State{
	StateExtractHost:            {StateFetchWellKnown},
	StateFetchWellKnown:         {StateParseHomeserverURL},
	StateParseHomeserverURL:     {StateValidateHomeserver},
	StateValidateHomeserver:     {StateValidateIdentityServer, StateSuccess},
	StateValidateIdentityServer: {StateSuccess},
}

// DefaultScheme is used to reach https://<hostname>/.well-known/matrix/client.
const DefaultScheme = "https"

// Config holds the collaborators of a discovery run.
type Config struct {
	Transport matrix.Transport
	// Scheme for the well-known lookup. Empty means DefaultScheme.
	Scheme string
	Logger *slog.Logger
}

// Result is a validated discovery.
type Result struct {
	Info           synapse.DiscoveryInfo
	Homeserver     *url.URL
	IdentityServer *url.URL
	Versions       []string
}

// Machine runs discovery one step at a time. It is not safe for concurrent
// use; each login attempt builds its own.
type Machine struct {
	cfg    Config
	userID string
	logger *slog.Logger

	state State
	err   *Error

	// Each field is written by exactly one step and read by the next.
	hostname   string
	wellKnown  *synapse.DiscoveryInfo
	homeserver *url.URL
	versions   []string
	result     *Result
}

// NewMachine prepares discovery for userID, starting at ExtractHost.
func NewMachine(cfg Config, userID string) *Machine {
	if cfg.Scheme == "" {
		cfg.Scheme = DefaultScheme
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		cfg:    cfg,
		userID: userID,
		logger: logger.With("component", "discovery", "user_id", userID),
		state:  StateExtractHost,
	}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Done reports whether the machine reached Success or Failed.
func (m *Machine) Done() bool {
	return m.state.Terminal()
}

// Result returns the outcome once the machine is done.
func (m *Machine) Result() (*Result, error) {
	switch m.state {
	case StateSuccess:
		return m.result, nil
	case StateFailed:
		return nil, m.err
	default:
		return nil, fmt.Errorf("%w: result requested in state %s", ErrIllegalTransition, m.state)
	}
}

// Step runs the current state's action and advances. It returns the
// classified *Error when the step fails and ErrIllegalTransition when the
// machine is already done.
func (m *Machine) Step(ctx context.Context) error {
	var (
		next State
		err  *Error
	)

	switch m.state {
	case StateExtractHost:
		next, err = m.extractHost()
	case StateFetchWellKnown:
		next, err = m.fetchWellKnown(ctx)
	case StateParseHomeserverURL:
		next, err = m.parseHomeserverURL()
	case StateValidateHomeserver:
		next, err = m.validateHomeserver(ctx)
	case StateValidateIdentityServer:
		next, err = m.validateIdentityServer(ctx)
	default:
		return fmt.Errorf("%w: no step from %s", ErrIllegalTransition, m.state)
	}

	if err != nil {
		err.State = m.state
		m.logger.Debug("discovery failed", "state", m.state, "kind", err.Kind, "reason", err.Reason)
		m.err = err
		m.state = StateFailed
		return err
	}
	return m.transition(next)
}

func (m *Machine) transition(next State) error {
	if m.state.Terminal() {
		return fmt.Errorf("%w: %s is terminal", ErrIllegalTransition, m.state)
	}
	legal := next == StateFailed
	for _, s := range successors[m.state] {
		if s == next {
			legal = true
			break
		}
	}
	if !legal {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.state, next)
	}
	m.logger.Debug("discovery step", "from", m.state, "to", next)
	m.state = next
	return nil
}

// extractHost splits the user ID at its colons. A server name is
// hostname[:port], so only two or three segments form a usable user ID.
// The port never takes part in the well-known lookup.
func (m *Machine) extractHost() (State, *Error) {
	parts := strings.Split(m.userID, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, &Error{Kind: KindPrompt, Reason: fmt.Sprintf("%q is not a full user ID", m.userID)}
	}
	if parts[1] == "" {
		return 0, &Error{Kind: KindPrompt, Reason: fmt.Sprintf("%q has no server name", m.userID)}
	}
	if strings.ContainsAny(parts[1], "/@?#\\% ") {
		return 0, &Error{Kind: KindPrompt, Reason: fmt.Sprintf("%q is not a valid server name", parts[1])}
	}
	m.hostname = parts[1]
	return StateFetchWellKnown, nil
}

func (m *Machine) fetchWellKnown(ctx context.Context) (State, *Error) {
	ch, err := matrix.NewChannel(m.cfg.Transport, m.cfg.Scheme+"://"+m.hostname, m.logger)
	if err != nil {
		return 0, &Error{Kind: KindFailPrompt, Reason: err.Error(), Err: err}
	}

	info, err := matrix.Call(ctx, ch, synapse.DiscoverClient, synapse.Empty{})
	if err != nil {
		derr := classifyWellKnown(err)
		// Well-known is the only mechanism, so "try the next one" means
		// asking the user.
		if derr.Kind == KindIgnore {
			derr.Kind = KindPrompt
		}
		return 0, derr
	}
	if info.Homeserver.BaseURL == "" {
		return 0, &Error{Kind: KindFailPrompt, Reason: "well-known document has no m.homeserver base_url"}
	}

	m.wellKnown = info
	return StateParseHomeserverURL, nil
}

func classifyWellKnown(err error) *Error {
	// An interrupted lookup says nothing about the server.
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindFailError, Reason: "interrupted", Err: err}
	}
	var httpErr *matrix.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode() == http.StatusNotFound {
		return &Error{Kind: KindIgnore, Reason: "no well-known document", Err: err}
	}
	return &Error{Kind: KindFailPrompt, Reason: err.Error(), Err: err}
}

func (m *Machine) parseHomeserverURL() (State, *Error) {
	u, err := matrix.ParseBaseURL(m.wellKnown.Homeserver.BaseURL)
	if err != nil {
		return 0, &Error{Kind: KindFailError, Reason: err.Error(), Err: err}
	}
	m.homeserver = u
	return StateValidateHomeserver, nil
}

func (m *Machine) validateHomeserver(ctx context.Context) (State, *Error) {
	ch, err := matrix.NewChannel(m.cfg.Transport, m.homeserver.String(), m.logger)
	if err != nil {
		return 0, &Error{Kind: KindFailError, Reason: err.Error(), Err: err}
	}

	resp, err := matrix.Call(ctx, ch, synapse.ClientVersions, synapse.Empty{})
	if err != nil {
		return 0, &Error{Kind: KindFailError, Reason: fmt.Sprintf("%s is not a homeserver: %v", m.homeserver, err), Err: err}
	}
	if len(resp.Versions) == 0 {
		return 0, &Error{Kind: KindFailError, Reason: fmt.Sprintf("%s reports no supported versions", m.homeserver)}
	}
	m.versions = resp.Versions

	if m.wellKnown.IdentityServer != nil {
		return StateValidateIdentityServer, nil
	}
	m.result = &Result{Info: *m.wellKnown, Homeserver: m.homeserver, Versions: m.versions}
	return StateSuccess, nil
}

func (m *Machine) validateIdentityServer(ctx context.Context) (State, *Error) {
	raw := m.wellKnown.IdentityServer.BaseURL
	if raw == "" {
		return 0, &Error{Kind: KindFailError, Reason: "m.identity_server has no base_url"}
	}
	u, err := matrix.ParseBaseURL(raw)
	if err != nil {
		return 0, &Error{Kind: KindFailError, Reason: err.Error(), Err: err}
	}

	ch, err := matrix.NewChannel(m.cfg.Transport, u.String(), m.logger)
	if err != nil {
		return 0, &Error{Kind: KindFailError, Reason: err.Error(), Err: err}
	}
	if _, err := matrix.Call(ctx, ch, synapse.IdentityStatus, synapse.Empty{}); err != nil {
		return 0, &Error{Kind: KindFailError, Reason: fmt.Sprintf("%s is not an identity server: %v", u, err), Err: err}
	}

	m.result = &Result{Info: *m.wellKnown, Homeserver: m.homeserver, IdentityServer: u, Versions: m.versions}
	return StateSuccess, nil
}

// Discover runs every step for userID and returns the validated servers or
// the *Error that stopped it.
func Discover(ctx context.Context, cfg Config, userID string) (*Result, error) {
	m := NewMachine(cfg, userID)
	for !m.Done() {
		if err := m.Step(ctx); err != nil {
			return nil, err
		}
	}
	return m.Result()
}
