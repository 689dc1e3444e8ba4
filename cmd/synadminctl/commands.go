// ABOUTME: Sub-command table and the handlers for every admin operation
// ABOUTME: Each command owns a pflag set; mutating commands append a journal entry

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"maunium.net/go/mautrix/id"

	"github.com/florianjacob/synadminctl/internal/matrix"
	"github.com/florianjacob/synadminctl/internal/session"
	"github.com/florianjacob/synadminctl/internal/store"
	"github.com/florianjacob/synadminctl/internal/synapse"
)

// command is one sub-command. Flags registers the command's flags; Run
// receives the parsed set so it can tell explicitly set flags apart.
type command struct {
	Name    string
	Summary string
	Usage   string
	Flags   func(fs *pflag.FlagSet)
	Run     func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error
}

func commands() []*command {
	return []*command{
		loginCommand(),
		logoutCommand(),
		whoamiCommand(),
		versionCommand(),
		isAdminCommand(),
		queryUserCommand(),
		listJoinedRoomsCommand(),
		createModifyAccountCommand(),
		listAccountsCommand(),
		listRoomsCommand(),
		purgeRoomCommand(),
		resetPasswordCommand(),
		deactivateCommand(),
		historyCommand(),
	}
}

func findCommand(name string) *command {
	for _, c := range commands() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func newFlagSet(cmd *command, jsonOut *bool) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if cmd.Flags != nil {
		cmd.Flags(fs)
	}
	fs.BoolVar(jsonOut, "json", *jsonOut, "print raw JSON")
	return fs
}

// execute runs the sub-command named by args[0].
func execute(ctx context.Context, a *app, args []string) error {
	cmd := findCommand(args[0])
	if cmd == nil {
		return fmt.Errorf("unknown command %q\n\nRun 'synadminctl help' for usage.", args[0])
	}

	fs := newFlagSet(cmd, &a.jsonOut)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			writeCommandHelp(a.out, cmd)
			return nil
		}
		return fmt.Errorf("%s: %w\n\nusage: %s", cmd.Name, err, cmd.Usage)
	}
	return cmd.Run(ctx, a, fs, fs.Args())
}

func printUsage(w io.Writer) {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Fprint(w, banner)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: synadminctl [global flags] <command> [flags] [args]")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Commands:")
	tw := newTable(w)
	for _, c := range commands() {
		fmt.Fprintf(tw, "  %s\t%s\n", c.Name, c.Summary)
	}
	fmt.Fprintf(tw, "  %s\t%s\n", "help [command]", "Show help for a command")
	tw.Flush()
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Global flags:")
	fmt.Fprintln(w, "  -c, --config <path>     Configuration file")
	fmt.Fprintln(w, "      --homeserver <url>  Homeserver URL, skips server discovery")
	fmt.Fprintln(w, "      --log-level <lvl>   debug, info, warn or error")
	fmt.Fprintln(w, "      --json              Print raw JSON")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  SYNADMINCTL_CONFIG       Configuration file location")
	fmt.Fprintln(w, "  SYNADMINCTL_HOMESERVER   Homeserver URL")
	fmt.Fprintln(w, "  SYNADMINCTL_SESSION      Session file location")
	fmt.Fprintln(w, "  SYNADMINCTL_JOURNAL      Journal path, or false to disable it")
	fmt.Fprintln(w, "  SYNADMINCTL_LOG_LEVEL    Log level")
	fmt.Fprintln(w, "  SYNADMINCTL_TIMEOUT      Per-request timeout, e.g. 30s")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  synadminctl login")
	fmt.Fprintln(w, "  synadminctl query-user @alice:example.org")
	fmt.Fprintln(w, "  synadminctl list-rooms --order-by joined_members --dir b --limit 20")
	fmt.Fprintln(w, "  synadminctl create-modify-account alice --displayname Alice --password-prompt")
	fmt.Fprintln(w)
}

func printCommandHelp(w io.Writer, name string) error {
	cmd := findCommand(name)
	if cmd == nil {
		return fmt.Errorf("unknown command %q", name)
	}
	writeCommandHelp(w, cmd)
	return nil
}

func writeCommandHelp(w io.Writer, cmd *command) {
	var discard bool
	fs := newFlagSet(cmd, &discard)
	fmt.Fprintln(w, cmd.Summary)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Usage: %s\n", cmd.Usage)
	if usage := fs.FlagUsages(); usage != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprint(w, usage)
	}
}

func exactlyOne(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected 1 argument, got %d\n\nusage: %s", len(args), usage)
	}
	return args[0], nil
}

func noArgs(args []string, usage string) error {
	if len(args) != 0 {
		return fmt.Errorf("unexpected arguments %q\n\nusage: %s", args, usage)
	}
	return nil
}

// adminClient returns a client for the stored session, logging in first
// when there is none.
func (a *app) adminClient(ctx context.Context) (*synapse.AdminClient, *session.Session, error) {
	s, err := a.flow().Session(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, err := s.Channel(a.transport, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("session: %w", err)
	}
	return synapse.NewAdminClient(ch), s, nil
}

// qualifyUser turns a bare localpart into a user ID on the session's server.
// "alice:other.org" already names its server and only gains the sigil.
func qualifyUser(raw string, s *session.Session) (id.UserID, error) {
	if strings.HasPrefix(raw, "@") {
		return id.UserID(raw), nil
	}
	if strings.Contains(raw, ":") {
		return id.UserID("@" + raw), nil
	}
	_, server, err := s.User().Parse()
	if err != nil {
		return "", fmt.Errorf("session user %s: %w", s.UserID, err)
	}
	return id.NewUserID(raw, server), nil
}

func loginCommand() *command {
	var force bool
	const usage = "synadminctl login [--force]"
	return &command{
		Name:    "login",
		Summary: "Log in and store the session",
		Usage:   usage,
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVar(&force, "force", false, "log out the stored session and log in again")
		},
		Run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			if err := noArgs(args, usage); err != nil {
				return err
			}
			flow := a.flow()

			existing, err := a.sessions.Load()
			switch {
			case err == nil && !force:
				return a.emit(existing, func(w io.Writer) {
					warn(w, "Already logged in as %s on %s (use --force to log in again)", existing.UserID, existing.BaseURL)
				})
			case err == nil:
				if err := flow.Logout(ctx); err != nil {
					return err
				}
			case !errors.Is(err, session.ErrNotFound) && !force:
				return err
			}

			s, err := flow.Login(ctx)
			var device string
			if s != nil {
				device = s.DeviceID
			}
			a.record(ctx, s, store.ActionLogin, store.TargetSession, device, err, nil)
			if err != nil {
				return err
			}
			return a.emit(s, func(w io.Writer) {
				success(w, "Logged in as %s", s.UserID)
				field(w, "Homeserver", s.BaseURL)
				field(w, "Device", s.DeviceID)
			})
		},
	}
}

func logoutCommand() *command {
	const usage = "synadminctl logout"
	return &command{
		Name:    "logout",
		Summary: "Revoke the access token and remove the stored session",
		Usage:   usage,
		Run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			if err := noArgs(args, usage); err != nil {
				return err
			}
			s, err := a.sessions.Load()
			if errors.Is(err, session.ErrNotFound) {
				return a.emit(map[string]bool{"logged_out": false}, func(w io.Writer) {
					fmt.Fprintln(w, "Not logged in.")
				})
			}

			err = a.flow().Logout(ctx)
			var device string
			if s != nil {
				device = s.DeviceID
			}
			a.record(ctx, s, store.ActionLogout, store.TargetSession, device, err, nil)
			if err != nil {
				return err
			}
			return a.emit(map[string]bool{"logged_out": true}, func(w io.Writer) {
				success(w, "Logged out")
			})
		},
	}
}

func whoamiCommand() *command {
	const usage = "synadminctl whoami"
	return &command{
		Name:    "whoami",
		Summary: "Show the user and device of the stored session",
		Usage:   usage,
		Run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			if err := noArgs(args, usage); err != nil {
				return err
			}
			client, s, err := a.adminClient(ctx)
			if err != nil {
				return err
			}
			resp, err := client.WhoAmI(ctx)
			if err != nil {
				return fmt.Errorf("whoami: %w", err)
			}

			out := struct {
				UserID     id.UserID   `json:"user_id"`
				DeviceID   id.DeviceID `json:"device_id,omitempty"`
				Homeserver string      `json:"homeserver"`
			}{resp.UserID, resp.DeviceID, s.BaseURL}
			return a.emit(out, func(w io.Writer) {
				heading(w, "Identity")
				field(w, "User", string(out.UserID))
				field(w, "Device", orDash(string(out.DeviceID)))
				field(w, "Homeserver", out.Homeserver)
				fmt.Fprintln(w)
			})
		},
	}
}

func versionCommand() *command {
	const usage = "synadminctl version"
	return &command{
		Name:    "version",
		Summary: "Show the Synapse and Python versions of the homeserver",
		Usage:   usage,
		Run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			if err := noArgs(args, usage); err != nil {
				return err
			}

			var resp *synapse.ServerVersionResponse
			var baseURL string
			if a.cfg.Homeserver != "" {
				// The endpoint is public; a pinned homeserver needs no session.
				ch, err := matrix.NewChannel(a.transport, a.cfg.Homeserver, a.logger)
				if err != nil {
					return err
				}
				baseURL = ch.BaseURL().String()
				resp, err = matrix.Call(ctx, ch, synapse.ServerVersion, synapse.Empty{})
				if err != nil {
					return fmt.Errorf("server version: %w", err)
				}
			} else {
				client, s, err := a.adminClient(ctx)
				if err != nil {
					return err
				}
				baseURL = s.BaseURL
				resp, err = client.ServerVersion(ctx)
				if err != nil {
					return fmt.Errorf("server version: %w", err)
				}
			}

			return a.emit(resp, func(w io.Writer) {
				heading(w, "Homeserver")
				field(w, "URL", baseURL)
				field(w, "Synapse", resp.ServerVersion)
				field(w, "Python", orDash(resp.PythonVersion))
				field(w, "synadminctl", version)
				fmt.Fprintln(w)
			})
		},
	}
}

func isAdminCommand() *command {
	const usage = "synadminctl is-admin <user>"
	return &command{
		Name:    "is-admin",
		Summary: "Tell whether a user is a server admin",
		Usage:   usage,
		Run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			raw, err := exactlyOne(args, usage)
			if err != nil {
				return err
			}
			client, s, err := a.adminClient(ctx)
			if err != nil {
				return err
			}
			userID, err := qualifyUser(raw, s)
			if err != nil {
				return err
			}
			admin, err := client.UserIsAdmin(ctx, userID)
			if err != nil {
				return fmt.Errorf("checking admin status of %s: %w", userID, err)
			}

			out := struct {
				UserID id.UserID `json:"user_id"`
				Admin  bool      `json:"admin"`
			}{userID, admin}
			return a.emit(out, func(w io.Writer) {
				if admin {
					color.New(color.FgGreen).Fprintf(w, "%s is a server admin\n", userID)
				} else {
					fmt.Fprintf(w, "%s is not a server admin\n", userID)
				}
			})
		},
	}
}

func queryUserCommand() *command {
	const usage = "synadminctl query-user <user>"
	return &command{
		Name:    "query-user",
		Summary: "Show a user account",
		Usage:   usage,
		Run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			raw, err := exactlyOne(args, usage)
			if err != nil {
				return err
			}
			client, s, err := a.adminClient(ctx)
			if err != nil {
				return err
			}
			userID, err := qualifyUser(raw, s)
			if err != nil {
				return err
			}
			account, err := client.QueryUser(ctx, userID)
			if err != nil {
				return fmt.Errorf("querying %s: %w", userID, err)
			}
			return a.emit(account, func(w io.Writer) {
				printAccount(w, account)
			})
		},
	}
}

func printAccount(w io.Writer, u *synapse.UserAccount) {
	heading(w, "Account")
	field(w, "User", string(u.Name))
	field(w, "Display name", orDash(u.Displayname.String()))
	field(w, "Avatar", orDash(u.AvatarURL.String()))
	field(w, "Admin", yesNo(bool(u.Admin)))
	field(w, "Deactivated", yesNo(bool(u.Deactivated)))
	field(w, "Guest", yesNo(bool(u.IsGuest)))
	field(w, "Shadow banned", yesNo(bool(u.ShadowBanned)))
	field(w, "User type", orDash(u.UserType.String()))
	field(w, "Appservice", orDash(u.AppserviceID.String()))
	field(w, "Created", formatCreation(u.CreationTS))
	if len(u.Threepids) == 0 {
		field(w, "Threepids", "(none)")
	} else {
		for i, tp := range u.Threepids {
			label := ""
			if i == 0 {
				label = "Threepids:"
			}
			fmt.Fprintf(w, "  %-16s%s (%s)\n", label, tp.Address, tp.Medium)
		}
	}
	fmt.Fprintln(w)
}

func listJoinedRoomsCommand() *command {
	const usage = "synadminctl list-joined-rooms <user>"
	return &command{
		Name:    "list-joined-rooms",
		Summary: "List the rooms a user is joined to",
		Usage:   usage,
		Run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			raw, err := exactlyOne(args, usage)
			if err != nil {
				return err
			}
			client, s, err := a.adminClient(ctx)
			if err != nil {
				return err
			}
			userID, err := qualifyUser(raw, s)
			if err != nil {
				return err
			}
			resp, err := client.ListJoinedRooms(ctx, userID)
			if err != nil {
				return fmt.Errorf("listing joined rooms of %s: %w", userID, err)
			}
			return a.emit(resp, func(w io.Writer) {
				heading(w, fmt.Sprintf("Rooms joined by %s", userID))
				if len(resp.JoinedRooms) == 0 {
					fmt.Fprintln(w, "  (no rooms)")
				}
				for _, room := range resp.JoinedRooms {
					fmt.Fprintf(w, "  %s\n", room)
				}
				fmt.Fprintf(w, "\n  Total: %d\n\n", resp.Total)
			})
		},
	}
}

func createModifyAccountCommand() *command {
	var (
		password       string
		passwordPrompt bool
		logoutDevices  bool
		displayname    string
		avatarURL      string
		admin          bool
		deactivated    bool
		emails         []string
		msisdns        []string
		clearThreepids bool
	)
	const usage = "synadminctl create-modify-account <user> [flags]"
	return &command{
		Name:    "create-modify-account",
		Summary: "Create an account, or change fields of an existing one",
		Usage:   usage,
		Flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&password, "password", "", "new password (visible in the process list, prefer --password-prompt)")
			fs.BoolVar(&passwordPrompt, "password-prompt", false, "ask for the new password")
			fs.BoolVar(&logoutDevices, "logout-devices", true, "log out all devices when the password changes")
			fs.StringVar(&displayname, "displayname", "", "display name")
			fs.StringVar(&avatarURL, "avatar-url", "", "avatar mxc:// URL")
			fs.BoolVar(&admin, "admin", false, "grant or revoke server admin")
			fs.BoolVar(&deactivated, "deactivated", false, "deactivate or reactivate the account")
			fs.StringSliceVar(&emails, "email", nil, "email address (repeatable, replaces all threepids)")
			fs.StringSliceVar(&msisdns, "msisdn", nil, "phone number (repeatable, replaces all threepids)")
			fs.BoolVar(&clearThreepids, "clear-threepids", false, "remove all threepids")
		},
		Run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			raw, err := exactlyOne(args, usage)
			if err != nil {
				return err
			}
			if fs.Changed("password") && passwordPrompt {
				return errors.New("use either --password or --password-prompt")
			}
			if clearThreepids && (len(emails) > 0 || len(msisdns) > 0) {
				return errors.New("--clear-threepids cannot be combined with --email or --msisdn")
			}

			client, s, err := a.adminClient(ctx)
			if err != nil {
				return err
			}
			userID, err := qualifyUser(raw, s)
			if err != nil {
				return err
			}

			req := synapse.CreateModifyAccountRequest{UserID: userID}
			var fields []string
			set := func(name string) bool {
				if fs.Changed(name) {
					fields = append(fields, name)
					return true
				}
				return false
			}

			if passwordPrompt {
				password, err = askNewPassword(a)
				if err != nil {
					return err
				}
				fields = append(fields, "password")
				req.Password = &password
			} else if set("password") {
				req.Password = &password
			}
			if set("logout-devices") {
				req.LogoutDevices = &logoutDevices
			}
			if set("displayname") {
				req.Displayname = &displayname
			}
			if set("avatar-url") {
				req.AvatarURL = &avatarURL
			}
			if set("admin") {
				req.Admin = &admin
			}
			if set("deactivated") {
				req.Deactivated = &deactivated
			}
			if fs.Changed("email") || fs.Changed("msisdn") || clearThreepids {
				threepids := []synapse.Threepid{}
				for _, e := range emails {
					threepids = append(threepids, synapse.Threepid{Medium: synapse.MediumEmail, Address: e})
				}
				for _, m := range msisdns {
					threepids = append(threepids, synapse.Threepid{Medium: synapse.MediumMSISDN, Address: m})
				}
				req.Threepids = &threepids
				fields = append(fields, "threepids")
			}

			account, created, err := client.CreateModifyAccount(ctx, req)
			a.record(ctx, s, store.ActionCreateModifyAccount, store.TargetUser, string(userID), err,
				map[string]any{"created": created, "fields": fields})
			if err != nil {
				return fmt.Errorf("creating or modifying %s: %w", userID, err)
			}

			return a.emit(account, func(w io.Writer) {
				if created {
					success(w, "Created account %s", account.Name)
				} else {
					success(w, "Updated account %s", account.Name)
				}
				printAccount(w, account)
			})
		},
	}
}

// askNewPassword asks twice and requires both answers to match.
func askNewPassword(a *app) (string, error) {
	first, err := a.prompter.AskSecret("New password")
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if first == "" {
		return "", errors.New("password must not be empty")
	}
	second, err := a.prompter.AskSecret("Repeat password")
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

// randomPassword returns 24 random bytes, base64url encoded.
func randomPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func listAccountsCommand() *command {
	var (
		from        string
		limit       int
		userID      string
		name        string
		guests      bool
		deactivated bool
	)
	const usage = "synadminctl list-accounts [flags]"
	return &command{
		Name:    "list-accounts",
		Summary: "List local user accounts",
		Usage:   usage,
		Flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&from, "from", "", "pagination token from a previous listing")
			fs.IntVar(&limit, "limit", 0, "maximum number of accounts")
			fs.StringVar(&userID, "user-id", "", "only user IDs containing this")
			fs.StringVar(&name, "name", "", "only user IDs or display names containing this")
			fs.BoolVar(&guests, "guests", true, "include guest accounts")
			fs.BoolVar(&deactivated, "deactivated", false, "include deactivated accounts")
		},
		Run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			if err := noArgs(args, usage); err != nil {
				return err
			}
			client, _, err := a.adminClient(ctx)
			if err != nil {
				return err
			}

			var req synapse.ListAccountsRequest
			if fs.Changed("from") {
				req.From = &from
			}
			if fs.Changed("limit") {
				req.Limit = &limit
			}
			if fs.Changed("user-id") {
				req.UserID = &userID
			}
			if fs.Changed("name") {
				req.Name = &name
			}
			if fs.Changed("guests") {
				req.Guests = &guests
			}
			if fs.Changed("deactivated") {
				req.Deactivated = &deactivated
			}

			resp, err := client.ListAccounts(ctx, req)
			if err != nil {
				return fmt.Errorf("listing accounts: %w", err)
			}
			return a.emit(resp, func(w io.Writer) {
				heading(w, "Accounts")
				if len(resp.Users) == 0 {
					fmt.Fprintln(w, "  (no accounts)")
					fmt.Fprintln(w)
					return
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "  USER\tDISPLAY NAME\tADMIN\tGUEST\tDEACTIVATED\tCREATED")
				fmt.Fprintln(tw, "  ----\t------------\t-----\t-----\t-----------\t-------")
				for _, u := range resp.Users {
					fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
						u.Name,
						truncate(orDash(u.Displayname.String()), 24),
						yesNo(bool(u.Admin)),
						yesNo(bool(u.IsGuest)),
						yesNo(bool(u.Deactivated)),
						formatCreation(u.CreationTS),
					)
				}
				tw.Flush()
				fmt.Fprintf(w, "\n  Total: %d\n", resp.Total)
				if resp.NextToken != "" {
					fmt.Fprintf(w, "  More:  --from %s\n", resp.NextToken)
				}
				fmt.Fprintln(w)
			})
		},
	}
}

func listRoomsCommand() *command {
	var (
		from    int
		limit   int
		orderBy string
		dir     string
		search  string
	)
	const usage = "synadminctl list-rooms [flags]"
	return &command{
		Name:    "list-rooms",
		Summary: "List rooms known to the homeserver",
		Usage:   usage,
		Flags: func(fs *pflag.FlagSet) {
			fs.IntVar(&from, "from", 0, "offset to start from")
			fs.IntVar(&limit, "limit", 0, "maximum number of rooms")
			fs.StringVar(&orderBy, "order-by", "", "sort key: "+strings.Join(synapse.RoomOrderKeys, ", "))
			fs.StringVar(&dir, "dir", "", "f (forwards) or b (backwards)")
			fs.StringVar(&search, "search", "", "only rooms whose name contains this")
		},
		Run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			if err := noArgs(args, usage); err != nil {
				return err
			}
			client, _, err := a.adminClient(ctx)
			if err != nil {
				return err
			}

			var req synapse.ListRoomsRequest
			if fs.Changed("from") {
				req.From = &from
			}
			if fs.Changed("limit") {
				req.Limit = &limit
			}
			if fs.Changed("order-by") {
				req.OrderBy = &orderBy
			}
			if fs.Changed("dir") {
				req.Dir = &dir
			}
			if fs.Changed("search") {
				req.SearchTerm = &search
			}

			resp, err := client.ListRooms(ctx, req)
			if err != nil {
				return fmt.Errorf("listing rooms: %w", err)
			}
			return a.emit(resp, func(w io.Writer) {
				heading(w, "Rooms")
				if len(resp.Rooms) == 0 {
					fmt.Fprintln(w, "  (no rooms)")
					fmt.Fprintln(w)
					return
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "  ROOM ID\tNAME\tALIAS\tMEMBERS\tLOCAL\tVERSION\tPUBLIC")
				fmt.Fprintln(tw, "  -------\t----\t-----\t-------\t-----\t-------\t------")
				for _, r := range resp.Rooms {
					fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%d\t%s\t%s\n",
						r.RoomID,
						truncate(orDash(r.Name.String()), 24),
						truncate(orDash(r.CanonicalAlias.String()), 32),
						r.JoinedMembers,
						r.JoinedLocalMembers,
						r.Version,
						yesNo(bool(r.Public)),
					)
				}
				tw.Flush()
				fmt.Fprintf(w, "\n  Total: %d\n", resp.TotalRooms)
				if resp.NextBatch != nil {
					fmt.Fprintf(w, "  More:  --from %d\n", *resp.NextBatch)
				}
				fmt.Fprintln(w)
			})
		},
	}
}

// confirm asks unless yes is set. It reports false when the operator declines.
func (a *app) confirm(yes bool, label string) (bool, error) {
	if yes {
		return true, nil
	}
	ok, err := a.prompter.Confirm(label)
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return ok, nil
}

func purgeRoomCommand() *command {
	var yes bool
	const usage = "synadminctl purge-room <room-id> [--yes]"
	return &command{
		Name:    "purge-room",
		Summary: "Delete a room and all its history from the database",
		Usage:   usage,
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
		},
		Run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			raw, err := exactlyOne(args, usage)
			if err != nil {
				return err
			}
			roomID := id.RoomID(raw)
			if err := matrix.ValidateRoomID(roomID); err != nil {
				return err
			}

			client, s, err := a.adminClient(ctx)
			if err != nil {
				return err
			}
			ok, err := a.confirm(yes, fmt.Sprintf("Purge %s from the database? This cannot be undone", roomID))
			if err != nil {
				return err
			}
			if !ok {
				warn(a.out, "Aborted.")
				return nil
			}

			err = client.PurgeRoom(ctx, roomID)
			a.record(ctx, s, store.ActionPurgeRoom, store.TargetRoom, string(roomID), err, nil)
			if err != nil {
				return fmt.Errorf("purging %s: %w", roomID, err)
			}
			return a.emit(map[string]any{"room_id": roomID, "purged": true}, func(w io.Writer) {
				success(w, "Purged room %s", roomID)
			})
		},
	}
}

func resetPasswordCommand() *command {
	var (
		random        bool
		logoutDevices bool
	)
	const usage = "synadminctl reset-password <user> [--random] [--logout-devices=false]"
	return &command{
		Name:    "reset-password",
		Summary: "Set a new password for a user",
		Usage:   usage,
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVar(&random, "random", false, "generate a random password and print it")
			fs.BoolVar(&logoutDevices, "logout-devices", true, "log out all of the user's devices")
		},
		Run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			raw, err := exactlyOne(args, usage)
			if err != nil {
				return err
			}
			client, s, err := a.adminClient(ctx)
			if err != nil {
				return err
			}
			userID, err := qualifyUser(raw, s)
			if err != nil {
				return err
			}

			var password string
			if random {
				password, err = randomPassword()
			} else {
				password, err = askNewPassword(a)
			}
			if err != nil {
				return err
			}

			req := synapse.ResetPasswordRequest{UserID: userID, NewPassword: password}
			detail := map[string]any{"random": random}
			if fs.Changed("logout-devices") {
				req.LogoutDevices = &logoutDevices
				detail["logout_devices"] = logoutDevices
			}

			err = client.ResetPassword(ctx, req)
			a.record(ctx, s, store.ActionResetPassword, store.TargetUser, string(userID), err, detail)
			if err != nil {
				return fmt.Errorf("resetting password of %s: %w", userID, err)
			}

			out := struct {
				UserID   id.UserID `json:"user_id"`
				Password string    `json:"password,omitempty"`
			}{UserID: userID}
			if random {
				out.Password = password
			}
			return a.emit(out, func(w io.Writer) {
				success(w, "Password of %s reset", userID)
				if random {
					field(w, "New password", password)
				}
			})
		},
	}
}

func deactivateCommand() *command {
	var (
		erase bool
		yes   bool
	)
	const usage = "synadminctl deactivate <user> [--erase] [--yes]"
	return &command{
		Name:    "deactivate",
		Summary: "Deactivate an account, optionally erasing its data",
		Usage:   usage,
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVar(&erase, "erase", false, "also mark the user's messages as erased")
			fs.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
		},
		Run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			raw, err := exactlyOne(args, usage)
			if err != nil {
				return err
			}
			client, s, err := a.adminClient(ctx)
			if err != nil {
				return err
			}
			userID, err := qualifyUser(raw, s)
			if err != nil {
				return err
			}
			if userID == s.User() {
				return errors.New("refusing to deactivate the account of the current session")
			}

			label := fmt.Sprintf("Deactivate %s? This cannot be undone", userID)
			if erase {
				label = fmt.Sprintf("Deactivate %s and erase its data? This cannot be undone", userID)
			}
			ok, err := a.confirm(yes, label)
			if err != nil {
				return err
			}
			if !ok {
				warn(a.out, "Aborted.")
				return nil
			}

			req := synapse.DeactivateAccountRequest{UserID: userID}
			if fs.Changed("erase") {
				req.Erase = &erase
			}
			resp, err := client.DeactivateAccount(ctx, req)
			a.record(ctx, s, store.ActionDeactivateAccount, store.TargetUser, string(userID), err,
				map[string]any{"erase": erase})
			if err != nil {
				return fmt.Errorf("deactivating %s: %w", userID, err)
			}
			return a.emit(resp, func(w io.Writer) {
				success(w, "Deactivated %s", userID)
				field(w, "Unbind result", orDash(resp.IDServerUnbindResult))
			})
		},
	}
}

func historyCommand() *command {
	var (
		since  time.Duration
		action string
		target string
		limit  int
	)
	const usage = "synadminctl history [flags]"
	return &command{
		Name:    "history",
		Summary: "Show the local journal of admin operations",
		Usage:   usage,
		Flags: func(fs *pflag.FlagSet) {
			fs.DurationVar(&since, "since", 0, "only entries newer than this, e.g. 24h")
			fs.StringVar(&action, "action", "", "only this action")
			fs.StringVar(&target, "target", "", "only entries about this user or room")
			fs.IntVar(&limit, "limit", 0, "maximum number of entries (default 100, max 1000)")
		},
		Run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			if err := noArgs(args, usage); err != nil {
				return err
			}
			j, err := a.openJournal()
			if err != nil {
				return fmt.Errorf("opening journal: %w", err)
			}
			if j == nil {
				return errors.New("the journal is disabled")
			}

			f := store.Filter{Limit: limit}
			if since > 0 {
				t := time.Now().Add(-since)
				f.Since = &t
			}
			if fs.Changed("action") {
				act := store.Action(action)
				if !store.IsValidAction(act) {
					return fmt.Errorf("unknown action %q", action)
				}
				f.Action = &act
			}
			if fs.Changed("target") {
				f.TargetID = &target
			}

			entries, err := j.List(ctx, f)
			if err != nil {
				return err
			}
			return a.emit(entries, func(w io.Writer) {
				heading(w, "History")
				if len(entries) == 0 {
					fmt.Fprintln(w, "  (no entries)")
					fmt.Fprintln(w)
					return
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "  TIME\tACTION\tTARGET\tOUTCOME\tACTOR")
				fmt.Fprintln(tw, "  ----\t------\t------\t-------\t-----")
				for _, e := range entries {
					fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
						e.Timestamp.Local().Format("2006-01-02 15:04:05"),
						e.Action,
						truncate(orDash(e.TargetID), 40),
						e.Outcome,
						orDash(e.Actor),
					)
				}
				tw.Flush()
				fmt.Fprintln(w)
			})
		},
	}
}
