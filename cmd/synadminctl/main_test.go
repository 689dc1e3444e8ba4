// ABOUTME: Tests for the CLI sub-commands against a fake Synapse server
// ABOUTME: Covers flag handling, user ID qualification, confirmations, JSON output and journaling

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix/id"

	"github.com/florianjacob/synadminctl/internal/config"
	"github.com/florianjacob/synadminctl/internal/prompt"
	"github.com/florianjacob/synadminctl/internal/session"
	"github.com/florianjacob/synadminctl/internal/store"
)

type recorded struct {
	method string
	path   string
	query  url.Values
	auth   string
	body   string
}

// fakeSynapse records every request and answers from a ServeMux.
type fakeSynapse struct {
	mu       sync.Mutex
	requests []recorded
	mux      *http.ServeMux
}

func newFakeSynapse() *fakeSynapse {
	return &fakeSynapse{mux: http.NewServeMux()}
}

func (f *fakeSynapse) handle(pattern string, status int, body string) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (f *fakeSynapse) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.Query(),
		auth:   r.Header.Get("Authorization"),
		body:   string(data),
	})
	f.mu.Unlock()
	r.Body = io.NopCloser(bytes.NewReader(data))
	f.mux.ServeHTTP(w, r)
}

func (f *fakeSynapse) all() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

func (f *fakeSynapse) last(t *testing.T) recorded {
	t.Helper()
	reqs := f.all()
	require.NotEmpty(t, reqs, "no request reached the server")
	return reqs[len(reqs)-1]
}

type testEnv struct {
	app     *app
	out     *bytes.Buffer
	journal *store.MockStore
	server  *fakeSynapse
	url     string
}

// newTestEnv logs in as @admin:example.org against a fake server. input
// feeds the prompter.
func newTestEnv(t *testing.T, input string) *testEnv {
	t.Helper()
	fake := newFakeSynapse()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	sessions := session.FileStore{Path: filepath.Join(t.TempDir(), "session.toml")}
	require.NoError(t, sessions.Save(&session.Session{
		BaseURL:     srv.URL,
		UserID:      "@admin:example.org",
		AccessToken: "syt_admin",
		DeviceID:    "ADMINDEV",
	}))

	cfg := config.Default()
	cfg.Session.Path = sessions.Path
	cfg.Journal.Path = filepath.Join(t.TempDir(), "journal.db")

	journal := store.NewMockStore()
	out := &bytes.Buffer{}
	return &testEnv{
		app: &app{
			cfg:       cfg,
			logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
			out:       out,
			prompter:  prompt.New(strings.NewReader(input), io.Discard),
			transport: srv.Client(),
			sessions:  sessions,
			journal:   journal,
		},
		out:     out,
		journal: journal,
		server:  fake,
		url:     srv.URL,
	}
}

func (e *testEnv) run(args ...string) error {
	return execute(context.Background(), e.app, args)
}

const bobAccount = `{"name":"@bob:example.org","displayname":"Bob","avatar_url":null,"threepids":[],
	"admin":0,"deactivated":0,"is_guest":0,"user_type":null,"creation_ts":1560432506}`

func TestExecute_UnknownCommand(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.run("frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "frobnicate"`)
}

func TestExecute_BadFlag(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.run("list-rooms", "--limit", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: synadminctl list-rooms")
	assert.Empty(t, env.server.all())
}

func TestExecute_CommandHelp(t *testing.T) {
	env := newTestEnv(t, "")

	require.NoError(t, env.run("purge-room", "--help"))
	assert.Contains(t, env.out.String(), "Usage: synadminctl purge-room")
	assert.Contains(t, env.out.String(), "--yes")
	assert.Empty(t, env.server.all())
}

func TestQueryUser_QualifiesLocalpart(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("GET /_synapse/admin/v2/users/{user_id}", http.StatusOK, bobAccount)

	require.NoError(t, env.run("query-user", "bob"))

	req := env.server.last(t)
	assert.Equal(t, "/_synapse/admin/v2/users/@bob:example.org", req.path)
	assert.Equal(t, "Bearer syt_admin", req.auth)
	assert.Contains(t, env.out.String(), "@bob:example.org")
	assert.Contains(t, env.out.String(), "Bob")
}

func TestQueryUser_JSON(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("GET /_synapse/admin/v2/users/{user_id}", http.StatusOK, bobAccount)

	require.NoError(t, env.run("query-user", "--json", "@bob:example.org"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &got))
	assert.Equal(t, "@bob:example.org", got["name"])
	assert.Equal(t, false, got["admin"], "integer flags come out as booleans")
}

func TestQueryUser_HTTPError(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("GET /_synapse/admin/v2/users/{user_id}", http.StatusNotFound,
		`{"errcode":"M_NOT_FOUND","error":"User not found"}`)

	err := env.run("query-user", "@ghost:example.org")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "M_NOT_FOUND")
}

func TestQueryUser_ArgumentCount(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.run("query-user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1 argument")
}

func TestIsAdmin(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("GET /_synapse/admin/v1/users/{user_id}/admin", http.StatusOK, `{"admin":true}`)

	require.NoError(t, env.run("is-admin", "@bob:example.org"))
	assert.Contains(t, env.out.String(), "@bob:example.org is a server admin")
}

func TestCreateModifyAccount_SendsOnlyChangedFields(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("PUT /_synapse/admin/v2/users/{user_id}", http.StatusCreated, bobAccount)

	require.NoError(t, env.run("create-modify-account", "bob", "--displayname", "Bob", "--admin"))

	req := env.server.last(t)
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/_synapse/admin/v2/users/@bob:example.org", req.path)
	assert.JSONEq(t, `{"displayname":"Bob","admin":true}`, req.body)
	assert.Contains(t, env.out.String(), "Created account @bob:example.org")

	entries := env.journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, store.ActionCreateModifyAccount, entries[0].Action)
	assert.Equal(t, "@bob:example.org", entries[0].TargetID)
	assert.Equal(t, "@admin:example.org", entries[0].Actor)
	assert.Equal(t, env.url, entries[0].Homeserver)
	assert.Equal(t, true, entries[0].Detail["created"])
	assert.Equal(t, []string{"displayname", "admin"}, entries[0].Detail["fields"])
}

func TestCreateModifyAccount_UpdateReportsModified(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("PUT /_synapse/admin/v2/users/{user_id}", http.StatusOK, bobAccount)

	require.NoError(t, env.run("create-modify-account", "@bob:example.org", "--deactivated=false"))

	assert.JSONEq(t, `{"deactivated":false}`, env.server.last(t).body)
	assert.Contains(t, env.out.String(), "Updated account @bob:example.org")
}

func TestCreateModifyAccount_Threepids(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("PUT /_synapse/admin/v2/users/{user_id}", http.StatusOK, bobAccount)

	require.NoError(t, env.run("create-modify-account", "bob", "--email", "bob@example.org", "--msisdn", "4915112345678"))
	assert.JSONEq(t, `{"threepids":[
		{"medium":"email","address":"bob@example.org"},
		{"medium":"msisdn","address":"4915112345678"}
	]}`, env.server.last(t).body)

	require.NoError(t, env.run("create-modify-account", "bob", "--clear-threepids"))
	assert.JSONEq(t, `{"threepids":[]}`, env.server.last(t).body)
}

func TestCreateModifyAccount_PasswordPromptNeverJournaled(t *testing.T) {
	env := newTestEnv(t, "hunter2\nhunter2\n")
	env.server.handle("PUT /_synapse/admin/v2/users/{user_id}", http.StatusOK, bobAccount)

	require.NoError(t, env.run("create-modify-account", "bob", "--password-prompt"))
	assert.JSONEq(t, `{"password":"hunter2"}`, env.server.last(t).body)

	entries := env.journal.Entries()
	require.Len(t, entries, 1)
	data, err := json.Marshal(entries[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
}

func TestCreateModifyAccount_PasswordMismatch(t *testing.T) {
	env := newTestEnv(t, "one\ntwo\n")

	err := env.run("create-modify-account", "bob", "--password-prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")
	assert.Empty(t, env.server.all())
	assert.Empty(t, env.journal.Entries())
}

func TestCreateModifyAccount_ConflictingFlags(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.run("create-modify-account", "bob", "--password", "x", "--password-prompt")
	assert.Error(t, err)

	err = env.run("create-modify-account", "bob", "--clear-threepids", "--email", "a@example.org")
	assert.Error(t, err)
	assert.Empty(t, env.server.all())
}

func TestListAccounts_Query(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("GET /_synapse/admin/v2/users", http.StatusOK,
		`{"users":[`+bobAccount+`],"next_token":"100","total":250}`)

	require.NoError(t, env.run("list-accounts", "--limit", "100", "--deactivated", "--name", "bo"))

	req := env.server.last(t)
	assert.Equal(t, "100", req.query.Get("limit"))
	assert.Equal(t, "true", req.query.Get("deactivated"))
	assert.Equal(t, "bo", req.query.Get("name"))
	assert.False(t, req.query.Has("guests"), "unset flags are not sent")
	assert.False(t, req.query.Has("from"))

	out := env.out.String()
	assert.Contains(t, out, "@bob:example.org")
	assert.Contains(t, out, "Total: 250")
	assert.Contains(t, out, "--from 100")
}

func TestListRooms_QueryAndTable(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("GET /_synapse/admin/v1/rooms", http.StatusOK, `{
		"rooms":[{"room_id":"!abc:example.org","name":"Music Theory","canonical_alias":"#music:example.org",
			"joined_members":127,"joined_local_members":2,"version":"10","creator":"","public":true}],
		"offset":10,"total_rooms":11
	}`)

	require.NoError(t, env.run("list-rooms", "--from", "10", "--order-by", "joined_members", "--dir", "b"))

	req := env.server.last(t)
	assert.Equal(t, "10", req.query.Get("from"))
	assert.Equal(t, "joined_members", req.query.Get("order_by"))
	assert.Equal(t, "b", req.query.Get("dir"))
	assert.False(t, req.query.Has("limit"))

	out := env.out.String()
	assert.Contains(t, out, "!abc:example.org")
	assert.Contains(t, out, "#music:example.org")
	assert.Contains(t, out, "Total: 11")
	assert.NotContains(t, out, "More:")
}

func TestListRooms_InvalidOrderNeverSent(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.run("list-rooms", "--order-by", "size")
	assert.Error(t, err)
	assert.Empty(t, env.server.all())
}

func TestListJoinedRooms(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("GET /_synapse/admin/v1/users/{user_id}/joined_rooms", http.StatusOK,
		`{"joined_rooms":["!a:example.org","!b:example.org"],"total":2}`)

	require.NoError(t, env.run("list-joined-rooms", "bob"))
	assert.Equal(t, "/_synapse/admin/v1/users/@bob:example.org/joined_rooms", env.server.last(t).path)
	assert.Contains(t, env.out.String(), "!b:example.org")
	assert.Contains(t, env.out.String(), "Total: 2")
}

func TestPurgeRoom_DeclinedDoesNothing(t *testing.T) {
	env := newTestEnv(t, "n\n")

	require.NoError(t, env.run("purge-room", "!abc:example.org"))
	assert.Contains(t, env.out.String(), "Aborted")
	assert.Empty(t, env.server.all())
	assert.Empty(t, env.journal.Entries())
}

func TestPurgeRoom_Confirmed(t *testing.T) {
	env := newTestEnv(t, "yes\n")
	env.server.handle("POST /_synapse/admin/v1/purge_room", http.StatusOK, `{}`)

	require.NoError(t, env.run("purge-room", "!abc:example.org"))

	req := env.server.last(t)
	assert.JSONEq(t, `{"room_id":"!abc:example.org"}`, req.body)
	assert.Contains(t, env.out.String(), "Purged room !abc:example.org")

	entries := env.journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, store.ActionPurgeRoom, entries[0].Action)
	assert.Equal(t, store.TargetRoom, entries[0].TargetType)
	assert.Equal(t, store.OutcomeOK, entries[0].Outcome)
}

func TestPurgeRoom_RejectsAlias(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.run("purge-room", "--yes", "#music:example.org")
	assert.Error(t, err)
	assert.Empty(t, env.server.all())
}

func TestPurgeRoom_JournalFailureDoesNotMaskResult(t *testing.T) {
	env := newTestEnv(t, "")
	env.journal.AppendErr = errors.New("disk full")
	env.server.handle("POST /_synapse/admin/v1/purge_room", http.StatusOK, `{}`)

	require.NoError(t, env.run("purge-room", "-y", "!abc:example.org"))
	assert.Contains(t, env.out.String(), "Purged room")
}

func TestResetPassword_Random(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("POST /_synapse/admin/v1/reset_password/{user_id}", http.StatusOK, `{}`)

	require.NoError(t, env.run("reset-password", "--json", "--random", "--logout-devices=false", "bob"))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.server.last(t).body), &body))
	password, _ := body["new_password"].(string)
	assert.Len(t, password, 32)
	assert.Equal(t, false, body["logout_devices"])

	var out map[string]string
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &out))
	assert.Equal(t, "@bob:example.org", out["user_id"])
	assert.Equal(t, password, out["password"])
}

func TestResetPassword_LogoutDevicesOmittedByDefault(t *testing.T) {
	env := newTestEnv(t, "s3cret\ns3cret\n")
	env.server.handle("POST /_synapse/admin/v1/reset_password/{user_id}", http.StatusOK, `{}`)

	require.NoError(t, env.run("reset-password", "@bob:example.org"))
	assert.JSONEq(t, `{"new_password":"s3cret"}`, env.server.last(t).body)
	assert.NotContains(t, env.out.String(), "s3cret")
}

func TestResetPassword_ServerErrorJournaledAsFailed(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("POST /_synapse/admin/v1/reset_password/{user_id}", http.StatusForbidden,
		`{"errcode":"M_FORBIDDEN","error":"You are not a server admin"}`)

	err := env.run("reset-password", "--random", "bob")
	require.Error(t, err)

	entries := env.journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, store.OutcomeFailed, entries[0].Outcome)
	assert.Equal(t, "403 M_FORBIDDEN", entries[0].Detail["error"])
}

func TestDeactivate(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("POST /_synapse/admin/v1/deactivate/{user_id}", http.StatusOK, `{"id_server_unbind_result":"success"}`)

	require.NoError(t, env.run("deactivate", "--erase", "--yes", "bob"))

	req := env.server.last(t)
	assert.Equal(t, "/_synapse/admin/v1/deactivate/@bob:example.org", req.path)
	assert.JSONEq(t, `{"erase":true}`, req.body)
	assert.Contains(t, env.out.String(), "success")

	entries := env.journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, store.ActionDeactivateAccount, entries[0].Action)
	assert.Equal(t, true, entries[0].Detail["erase"])
}

func TestDeactivate_RefusesOwnAccount(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.run("deactivate", "--yes", "admin")
	require.Error(t, err)
	assert.Empty(t, env.server.all())
}

func TestWhoAmI(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("GET /_matrix/client/r0/account/whoami", http.StatusOK, `{"user_id":"@admin:example.org","device_id":"ADMINDEV"}`)

	require.NoError(t, env.run("whoami", "--json"))

	var out map[string]string
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &out))
	assert.Equal(t, "@admin:example.org", out["user_id"])
	assert.Equal(t, "ADMINDEV", out["device_id"])
	assert.Equal(t, env.url, out["homeserver"])
}

func TestVersion_UsesSession(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("GET /_synapse/admin/v1/server_version", http.StatusOK, `{"server_version":"1.95.1","python_version":"3.11.2"}`)

	require.NoError(t, env.run("version"))
	assert.Contains(t, env.out.String(), "1.95.1")
	assert.Contains(t, env.out.String(), "3.11.2")
}

func TestVersion_PinnedHomeserverIsAnonymous(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("GET /_synapse/admin/v1/server_version", http.StatusOK, `{"server_version":"1.95.1"}`)
	require.NoError(t, env.app.sessions.Delete())
	env.app.cfg.Homeserver = env.url

	require.NoError(t, env.run("version"))
	assert.Empty(t, env.server.last(t).auth)
	assert.Contains(t, env.out.String(), "1.95.1")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.handle("POST /_matrix/client/r0/logout", http.StatusOK, `{}`)

	require.NoError(t, env.run("logout"))
	assert.Equal(t, "Bearer syt_admin", env.server.last(t).auth)

	_, err := env.app.sessions.Load()
	assert.ErrorIs(t, err, session.ErrNotFound)

	entries := env.journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, store.ActionLogout, entries[0].Action)
	assert.Equal(t, "ADMINDEV", entries[0].TargetID)

	require.NoError(t, env.run("logout"))
	assert.Contains(t, env.out.String(), "Not logged in")
}

func TestLogin_AlreadyLoggedIn(t *testing.T) {
	env := newTestEnv(t, "")

	require.NoError(t, env.run("login"))
	assert.Contains(t, env.out.String(), "Already logged in as @admin:example.org")
	assert.Empty(t, env.server.all())
}

func TestLogin_PinnedHomeserver(t *testing.T) {
	env := newTestEnv(t, "@admin:example.org\npw\n")
	env.server.handle("POST /_matrix/client/r0/login", http.StatusOK,
		`{"user_id":"@admin:example.org","access_token":"syt_new","device_id":"NEWDEV"}`)
	require.NoError(t, env.app.sessions.Delete())
	env.app.cfg.Homeserver = env.url

	require.NoError(t, env.run("login"))

	s, err := env.app.sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "syt_new", s.AccessToken)
	assert.Contains(t, env.out.String(), "Logged in as @admin:example.org")

	entries := env.journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, store.ActionLogin, entries[0].Action)
	assert.Equal(t, "NEWDEV", entries[0].TargetID)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, env.journal.Append(ctx, &store.Entry{
		Actor: "@admin:example.org", Action: store.ActionPurgeRoom,
		TargetType: store.TargetRoom, TargetID: "!old:example.org", Timestamp: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, env.journal.Append(ctx, &store.Entry{
		Actor: "@admin:example.org", Action: store.ActionPurgeRoom,
		TargetType: store.TargetRoom, TargetID: "!new:example.org", Timestamp: now.Add(-time.Hour),
	}))
	require.NoError(t, env.journal.Append(ctx, &store.Entry{
		Actor: "@admin:example.org", Action: store.ActionResetPassword,
		TargetType: store.TargetUser, TargetID: "@bob:example.org", Timestamp: now,
	}))

	require.NoError(t, env.run("history", "--json", "--action", "purge_room", "--since", "24h"))

	var entries []store.Entry
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "!new:example.org", entries[0].TargetID)
	assert.Empty(t, env.server.all())
}

func TestHistory_UnknownAction(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.run("history", "--action", "format_disk")
	assert.Error(t, err)
}

func TestHistory_Disabled(t *testing.T) {
	env := newTestEnv(t, "")
	env.app.journal = nil
	env.app.cfg.Journal.Enabled = false

	err := env.run("history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestQualifyUser(t *testing.T) {
	s := &session.Session{UserID: "@admin:example.org"}

	tests := []struct {
		in   string
		want id.UserID
	}{
		{"bob", "@bob:example.org"},
		{"@bob:other.org", "@bob:other.org"},
		{"alice:other.org", "@alice:other.org"},
		{"alice:other.org:8448", "@alice:other.org:8448"},
	}
	for _, tt := range tests {
		got, err := qualifyUser(tt.in, s)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 24, "short"},
		{"abcdefghij", 8, "abcde..."},
		{"ÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄ", 24, "ÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄÄ..."},
		{"日本語の部屋", 5, "日本..."},
		{"日本語", 2, "日本"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		assert.Equal(t, tt.want, got)
		assert.True(t, utf8.ValidString(got), "%q is valid UTF-8", got)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.n)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	opts, args, err := parseGlobalFlags([]string{"--json", "-c", "/etc/s.yaml", "list-rooms", "--limit", "5"})
	require.NoError(t, err)
	assert.True(t, opts.json)
	assert.Equal(t, "/etc/s.yaml", opts.configPath)
	assert.Equal(t, []string{"list-rooms", "--limit", "5"}, args)
}

func TestPrintUsageListsEveryCommand(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)
	for _, c := range commands() {
		assert.Contains(t, buf.String(), c.Name)
	}
}
