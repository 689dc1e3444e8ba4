// ABOUTME: Login flow: reuse a stored session, or discover the homeserver, log in and store the result
// ABOUTME: Recoverable discovery failures fall back to asking the operator for the homeserver URL

package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"maunium.net/go/mautrix"

	"github.com/florianjacob/synadminctl/internal/discovery"
	"github.com/florianjacob/synadminctl/internal/matrix"
	"github.com/florianjacob/synadminctl/internal/prompt"
	"github.com/florianjacob/synadminctl/internal/session"
	"github.com/florianjacob/synadminctl/internal/synapse"
)

// Flow wires the collaborators of a login.
type Flow struct {
	Transport matrix.Transport
	// Scheme for the well-known lookup; see discovery.Config.
	WellKnownScheme string
	Sessions        session.Store
	Prompter        prompt.Prompter
	// Homeserver pins the homeserver URL and skips discovery.
	Homeserver string
	// DeviceName is the initial display name of the new device. Empty
	// means DefaultDeviceName().
	DeviceName string
	Logger     *slog.Logger
}

// DefaultDeviceName returns "synadminctl on <hostname>".
func DefaultDeviceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown host"
	}
	return "synadminctl on " + host
}

func (f *Flow) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// Session returns the stored session, logging in first when there is none.
// A stored session that cannot be read is an error, not a reason to log in
// again over it.
func (f *Flow) Session(ctx context.Context) (*session.Session, error) {
	s, err := f.Sessions.Load()
	if err == nil {
		f.logger().Debug("using stored session", "user_id", s.UserID, "base_url", s.BaseURL)
		return s, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, err
	}
	return f.Login(ctx)
}

// Login asks for credentials, resolves the homeserver, logs in and stores
// the new session.
func (f *Flow) Login(ctx context.Context) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	username, err := f.Prompter.Ask("Username")
	if err != nil {
		return nil, fmt.Errorf("reading username: %w", err)
	}
	if username == "" {
		return nil, errors.New("username is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	password, err := f.Prompter.AskSecret("Password")
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	baseURL, err := f.resolveHomeserver(ctx, username)
	if err != nil {
		return nil, err
	}

	ch, err := matrix.NewChannel(f.Transport, baseURL, f.logger())
	if err != nil {
		return nil, err
	}

	deviceName := f.DeviceName
	if deviceName == "" {
		deviceName = DefaultDeviceName()
	}
	resp, err := matrix.Call(ctx, ch, synapse.Login, mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: username,
		},
		Password:                 password,
		InitialDeviceDisplayName: deviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("logging in as %s: %w", username, err)
	}

	if resp.WellKnown != nil && resp.WellKnown.Homeserver.BaseURL != "" {
		if u, err := matrix.ParseBaseURL(resp.WellKnown.Homeserver.BaseURL); err == nil {
			baseURL = u.String()
		} else {
			f.logger().Warn("ignoring invalid well_known in login response", "error", err)
		}
	}

	s := &session.Session{
		BaseURL:     baseURL,
		UserID:      string(resp.UserID),
		AccessToken: resp.AccessToken,
		DeviceID:    string(resp.DeviceID),
	}
	if err := f.Sessions.Save(s); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	f.logger().Info("logged in", "user_id", s.UserID, "device_id", s.DeviceID, "base_url", s.BaseURL)
	return s, nil
}

// resolveHomeserver runs discovery for userID unless a homeserver is
// pinned, and asks the operator when discovery says so.
func (f *Flow) resolveHomeserver(ctx context.Context, userID string) (string, error) {
	if f.Homeserver != "" {
		u, err := matrix.ParseBaseURL(f.Homeserver)
		if err != nil {
			return "", fmt.Errorf("configured homeserver: %w", err)
		}
		return u.String(), nil
	}

	result, err := discovery.Discover(ctx, discovery.Config{
		Transport: f.Transport,
		Scheme:    f.WellKnownScheme,
		Logger:    f.logger(),
	}, userID)
	if err != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}
	switch {
	case err == nil:
		return result.Homeserver.String(), nil
	case discovery.IsTerminal(err):
		return "", fmt.Errorf("server discovery failed: %w", err)
	case discovery.IsRecoverable(err):
		if discovery.KindOf(err) == discovery.KindFailPrompt {
			f.Prompter.Say("Server discovery failed: %v", err)
		}
		return f.askHomeserver()
	default:
		return "", err
	}
}

func (f *Flow) askHomeserver() (string, error) {
	raw, err := f.Prompter.Ask("Homeserver URL")
	if err != nil {
		return "", fmt.Errorf("reading homeserver URL: %w", err)
	}
	u, err := matrix.ParseBaseURL(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Logout revokes the stored session's token and removes the session. The
// file is removed even when the server no longer accepts the token.
func (f *Flow) Logout(ctx context.Context) error {
	s, err := f.Sessions.Load()
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		f.logger().Warn("discarding unreadable session", "error", err)
		return f.Sessions.Delete()
	}

	ch, err := s.Channel(f.Transport, f.logger())
	if err == nil {
		err = synapse.NewAdminClient(ch).Logout(ctx)
	}
	if err != nil {
		f.logger().Warn("server logout failed, removing local session anyway", "error", err)
	}
	return f.Sessions.Delete()
}
