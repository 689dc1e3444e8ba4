// ABOUTME: Tests for endpoint descriptor encoding and decoding
// ABOUTME: Covers path expansion, query building, body omission and the error taxonomy

package matrix

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix/id"
)

type userRequest struct {
	UserID id.UserID `json:"-" path:"user_id"`
	Note   *string   `json:"note,omitempty"`
}

type userResponse struct {
	Name  string `json:"name"`
	Admin Flag   `json:"admin"`
}

type pageRequest struct {
	From   *int    `json:"-" query:"from"`
	Limit  *int    `json:"-" query:"limit"`
	Search *string `json:"-" query:"search_term"`
	Guests *bool   `json:"-" query:"guests"`
}

type roomBody struct {
	RoomID id.RoomID `json:"room_id"`
}

func (r roomBody) Validate() error {
	return ValidateRoomID(r.RoomID)
}

var (
	getUser = &Endpoint[Bearer, userRequest, userResponse]{
		Name:   "get_user",
		Method: http.MethodGet,
		Path:   "/_synapse/admin/v2/users/{user_id}",
	}
	putUser = &Endpoint[Bearer, userRequest, userResponse]{
		Name:    "put_user",
		Method:  http.MethodPut,
		Path:    "/_synapse/admin/v2/users/{user_id}",
		Success: []int{http.StatusOK, http.StatusCreated},
	}
	listPage = &Endpoint[Bearer, pageRequest, struct{}]{
		Name:   "list_page",
		Method: http.MethodGet,
		Path:   "/_synapse/admin/v1/rooms",
	}
	purge = &Endpoint[Bearer, roomBody, struct{}]{
		Name:   "purge",
		Method: http.MethodPost,
		Path:   "/_synapse/admin/v1/purge_room",
	}
	publicVersions = &Endpoint[Public, struct{}, struct{}]{
		Name:   "versions",
		Method: http.MethodGet,
		Path:   "/_matrix/client/versions",
	}
)

func ptr[T any](v T) *T { return &v }

func TestEndpoint_RequiresAuth(t *testing.T) {
	assert.True(t, getUser.RequiresAuth())
	assert.False(t, publicVersions.RequiresAuth())
}

func TestEndpoint_TypeLevelAccess(t *testing.T) {
	// Call only accepts *Endpoint[Public, ...]; a Bearer descriptor is a
	// different type and cannot be passed to it.
	_, ok := any(getUser).(*Endpoint[Public, userRequest, userResponse])
	assert.False(t, ok)

	_, ok = any(publicVersions).(*Endpoint[Public, struct{}, struct{}])
	assert.True(t, ok)
}

func TestEncode_PathParameter(t *testing.T) {
	req, err := getUser.Encode(userRequest{UserID: "@alice:example.org"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/_synapse/admin/v2/users/@alice:example.org", req.Path)
	assert.Nil(t, req.Body, "GET requests carry no body")
	assert.Empty(t, req.Header.Get("Content-Type"))
}

func TestEncode_PathParameterEscaped(t *testing.T) {
	req, err := getUser.Encode(userRequest{UserID: "@a/b:example.org"})
	require.NoError(t, err)
	assert.Equal(t, "/_synapse/admin/v2/users/@a%2Fb:example.org", req.Path)
}

func TestEncode_InvalidUserID(t *testing.T) {
	tests := []struct {
		name   string
		userID id.UserID
	}{
		{"empty", ""},
		{"missing sigil", "alice:example.org"},
		{"missing server", "@alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := getUser.Encode(userRequest{UserID: tt.userID})
			require.Error(t, err)

			var serErr *SerializationError
			require.True(t, errors.As(err, &serErr))
			assert.Equal(t, "get_user", serErr.Endpoint)
			assert.Equal(t, "user_id", serErr.Field)
		})
	}
}

func TestEncode_QueryParameters(t *testing.T) {
	req, err := listPage.Encode(pageRequest{From: ptr(10), Search: ptr("ops"), Guests: ptr(false)})
	require.NoError(t, err)

	assert.Equal(t, "10", req.Query.Get("from"))
	assert.Equal(t, "ops", req.Query.Get("search_term"))
	assert.Equal(t, "false", req.Query.Get("guests"))
	assert.False(t, req.Query.Has("limit"), "nil pointers are omitted")
}

func TestEncode_BodyOmitsUnsetFields(t *testing.T) {
	req, err := putUser.Encode(userRequest{UserID: "@alice:example.org"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{}`, string(req.Body))

	req, err = putUser.Encode(userRequest{UserID: "@alice:example.org", Note: ptr("hi")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"note":"hi"}`, string(req.Body))
}

func TestEncode_RequestValidation(t *testing.T) {
	_, err := purge.Encode(roomBody{RoomID: "not-a-room"})
	var serErr *SerializationError
	require.True(t, errors.As(err, &serErr))

	req, err := purge.Encode(roomBody{RoomID: "!abc:example.org"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"room_id":"!abc:example.org"}`, string(req.Body))
}

func TestEncode_Deterministic(t *testing.T) {
	in := pageRequest{From: ptr(5), Limit: ptr(20)}
	a, err := listPage.Encode(in)
	require.NoError(t, err)
	b, err := listPage.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExpandPath_Errors(t *testing.T) {
	_, err := expandPath("/users/{user_id", map[string]string{"user_id": "x"})
	require.NotNil(t, err)

	_, err = expandPath("/users/{user_id}", map[string]string{})
	require.NotNil(t, err)
	assert.Equal(t, "user_id", err.Field)
}

func TestDecode_Success(t *testing.T) {
	resp, err := getUser.Decode(&Response{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"name":"@alice:example.org","admin":1}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "@alice:example.org", resp.Name)
	assert.True(t, bool(resp.Admin))
}

func TestDecode_AlternateSuccessStatus(t *testing.T) {
	_, err := putUser.Decode(&Response{StatusCode: http.StatusCreated, Body: []byte(`{"name":"x"}`)})
	require.NoError(t, err)

	_, err = getUser.Decode(&Response{StatusCode: http.StatusCreated, Body: []byte(`{"name":"x"}`)})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusCreated))
}

func TestDecode_HTTPErrorWithMatrixBody(t *testing.T) {
	body := []byte(`{"errcode":"M_FORBIDDEN","error":"You are not a server admin"}`)
	_, err := getUser.Decode(&Response{StatusCode: http.StatusForbidden, Body: body})

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode())
	assert.Equal(t, "M_FORBIDDEN", httpErr.ErrCode())
	assert.Equal(t, body, httpErr.Response.Body)
	assert.Contains(t, err.Error(), "You are not a server admin")
}

func TestDecode_HTTPErrorWithoutMatrixBody(t *testing.T) {
	_, err := getUser.Decode(&Response{StatusCode: http.StatusBadGateway, Body: []byte("<html>bad gateway</html>")})

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Nil(t, httpErr.Matrix)
	assert.Empty(t, httpErr.ErrCode())
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestDecode_DeserializationError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "hello"},
		{"wrong shape", `{"admin":"yes"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := getUser.Decode(&Response{StatusCode: http.StatusOK, Body: []byte(tt.body)})

			var decErr *DeserializationError
			require.True(t, errors.As(err, &decErr))
			assert.Equal(t, []byte(tt.body), decErr.Body)
			assert.Equal(t, http.StatusOK, decErr.StatusCode)
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := userRequest{UserID: "@alice:example.org", Note: ptr("round trip")}
	req, err := putUser.Encode(in)
	require.NoError(t, err)

	var out userRequest
	require.NoError(t, json.Unmarshal(req.Body, &out))
	out.UserID = in.UserID
	assert.Equal(t, in, out)
}

func TestDecode_EmptyBodyForEmptyResponse(t *testing.T) {
	_, err := purge.Decode(&Response{StatusCode: http.StatusOK})
	assert.NoError(t, err)

	_, err = purge.Decode(&Response{StatusCode: http.StatusOK, Body: []byte(`{"unknown":1}`)})
	assert.NoError(t, err, "extra fields are ignored")
}
