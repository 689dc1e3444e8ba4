// ABOUTME: AdminClient offers one typed method per Synapse admin operation
// ABOUTME: Thin wrapper over an authenticated channel; every call maps to a single endpoint

package synapse

import (
	"context"
	"net/http"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"

	"github.com/florianjacob/synadminctl/internal/matrix"
)

// AdminClient calls the Synapse admin API on behalf of one session.
type AdminClient struct {
	ch *matrix.AuthenticatedChannel
}

// NewAdminClient wraps an authenticated channel.
func NewAdminClient(ch *matrix.AuthenticatedChannel) *AdminClient {
	return &AdminClient{ch: ch}
}

// Channel returns the underlying channel.
func (c *AdminClient) Channel() *matrix.AuthenticatedChannel {
	return c.ch
}

// ServerVersion reports the Synapse and Python versions.
func (c *AdminClient) ServerVersion(ctx context.Context) (*ServerVersionResponse, error) {
	return matrix.CallAuthenticated(ctx, c.ch, ServerVersion, Empty{})
}

// Logout invalidates the session's access token.
func (c *AdminClient) Logout(ctx context.Context) error {
	_, err := matrix.CallAuthenticated(ctx, c.ch, Logout, Empty{})
	return err
}

// WhoAmI returns the user and device the access token belongs to.
func (c *AdminClient) WhoAmI(ctx context.Context) (*mautrix.RespWhoami, error) {
	return matrix.CallAuthenticated(ctx, c.ch, WhoAmI, Empty{})
}

// QueryUser fetches one account's details.
func (c *AdminClient) QueryUser(ctx context.Context, userID id.UserID) (*UserAccount, error) {
	return matrix.CallAuthenticated(ctx, c.ch, QueryUser, UserRequest{UserID: userID})
}

// CreateModifyAccount reports created=true when the server answered 201.
func (c *AdminClient) CreateModifyAccount(ctx context.Context, req CreateModifyAccountRequest) (*UserAccount, bool, error) {
	account, status, err := matrix.CallAuthenticatedStatus(ctx, c.ch, CreateModifyAccount, req)
	if err != nil {
		return nil, false, err
	}
	return account, status == http.StatusCreated, nil
}

// ListAccounts returns one page of local accounts matching req.
func (c *AdminClient) ListAccounts(ctx context.Context, req ListAccountsRequest) (*ListAccountsResponse, error) {
	return matrix.CallAuthenticated(ctx, c.ch, ListAccounts, req)
}

// ListRooms returns one page of rooms known to the server.
func (c *AdminClient) ListRooms(ctx context.Context, req ListRoomsRequest) (*ListRoomsResponse, error) {
	return matrix.CallAuthenticated(ctx, c.ch, ListRooms, req)
}

// PurgeRoom removes a room and all its history from the database.
func (c *AdminClient) PurgeRoom(ctx context.Context, roomID id.RoomID) error {
	_, err := matrix.CallAuthenticated(ctx, c.ch, PurgeRoom, PurgeRoomRequest{RoomID: roomID})
	return err
}

// ResetPassword sets a new password for req.UserID.
func (c *AdminClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	_, err := matrix.CallAuthenticated(ctx, c.ch, ResetPassword, req)
	return err
}

// UserIsAdmin reports whether userID is a server admin.
func (c *AdminClient) UserIsAdmin(ctx context.Context, userID id.UserID) (bool, error) {
	resp, err := matrix.CallAuthenticated(ctx, c.ch, UserIsAdmin, UserRequest{UserID: userID})
	if err != nil {
		return false, err
	}
	return bool(resp.Admin), nil
}

// ListJoinedRooms lists the rooms userID is joined to.
func (c *AdminClient) ListJoinedRooms(ctx context.Context, userID id.UserID) (*JoinedRoomsResponse, error) {
	return matrix.CallAuthenticated(ctx, c.ch, ListJoinedRooms, UserRequest{UserID: userID})
}

// DeactivateAccount deactivates req.UserID, and also erases its data when req.Erase is true.
func (c *AdminClient) DeactivateAccount(ctx context.Context, req DeactivateAccountRequest) (*DeactivateAccountResponse, error) {
	return matrix.CallAuthenticated(ctx, c.ch, DeactivateAccount, req)
}
