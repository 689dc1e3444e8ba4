// ABOUTME: Request and response types for the Matrix client and Synapse admin endpoints
// ABOUTME: Optional request fields are pointers so unset values are omitted, never sent as null

package synapse

import (
	"errors"
	"fmt"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"

	"github.com/florianjacob/synadminctl/internal/matrix"
)

// DiscoveryInfo is the /.well-known/matrix/client document.
type DiscoveryInfo struct {
	Homeserver     mautrix.HomeserverInfo      `json:"m.homeserver"`
	IdentityServer *mautrix.IdentityServerInfo `json:"m.identity_server,omitempty"`
}

// VersionsResponse lists the client-server spec versions a homeserver
// supports.
type VersionsResponse struct {
	Versions         []string        `json:"versions"`
	UnstableFeatures map[string]bool `json:"unstable_features,omitempty"`
}

// ServerVersionResponse is returned by /_synapse/admin/v1/server_version.
// Newer Synapse releases no longer report python_version.
type ServerVersionResponse struct {
	ServerVersion string `json:"server_version"`
	PythonVersion string `json:"python_version,omitempty"`
}

// Threepid is a third-party identifier bound to an account.
type Threepid struct {
	Medium      string `json:"medium"`
	Address     string `json:"address"`
	AddedAt     int64  `json:"added_at,omitempty"`
	ValidatedAt int64  `json:"validated_at,omitempty"`
}

// Threepid media accepted by Synapse.
const (
	MediumEmail  = "email"
	MediumMSISDN = "msisdn"
)

// UserRequest addresses a single account.
type UserRequest struct {
	UserID id.UserID `json:"-" path:"user_id"`
}

// UserAccount is the account record returned by the v2 users API, both for
// queries and for create-or-modify.
type UserAccount struct {
	Name                    id.UserID               `json:"name"`
	Displayname             matrix.Optional[string] `json:"displayname"`
	AvatarURL               matrix.Optional[string] `json:"avatar_url"`
	Threepids               []Threepid              `json:"threepids,omitempty"`
	Admin                   matrix.Flag             `json:"admin"`
	Deactivated             matrix.Flag             `json:"deactivated"`
	IsGuest                 matrix.Flag             `json:"is_guest"`
	UserType                matrix.Optional[string] `json:"user_type"`
	AppserviceID            matrix.Optional[string] `json:"appservice_id"`
	ConsentVersion          matrix.Optional[string] `json:"consent_version"`
	ConsentServerNoticeSent matrix.Optional[string] `json:"consent_server_notice_sent"`
	CreationTS              int64                   `json:"creation_ts"`
	PasswordHash            matrix.Optional[string] `json:"password_hash"`
	ShadowBanned            matrix.Flag             `json:"shadow_banned"`
}

// CreateModifyAccountRequest creates an account or changes an existing one.
// Every body field is optional; an unset field keeps the server default or
// the account's current value. Synapse treats an explicit null differently
// from an absent key, so nil fields are always omitted. A Displayname of ""
// clears the display name.
type CreateModifyAccountRequest struct {
	UserID id.UserID `json:"-" path:"user_id"`

	Password      *string     `json:"password,omitempty"`
	LogoutDevices *bool       `json:"logout_devices,omitempty"`
	Displayname   *string     `json:"displayname,omitempty"`
	Threepids     *[]Threepid `json:"threepids,omitempty"`
	AvatarURL     *string     `json:"avatar_url,omitempty"`
	Admin         *bool       `json:"admin,omitempty"`
	Deactivated   *bool       `json:"deactivated,omitempty"`
}

func (r CreateModifyAccountRequest) Validate() error {
	if r.Threepids == nil {
		return nil
	}
	for _, tp := range *r.Threepids {
		if tp.Medium != MediumEmail && tp.Medium != MediumMSISDN {
			return fmt.Errorf("threepid %q: unknown medium %q", tp.Address, tp.Medium)
		}
		if tp.Address == "" {
			return errors.New("threepid address is empty")
		}
	}
	return nil
}

// ListAccountsRequest pages through local accounts. From is the opaque
// next_token of the previous page.
type ListAccountsRequest struct {
	From        *string `json:"-" query:"from"`
	Limit       *int    `json:"-" query:"limit"`
	UserID      *string `json:"-" query:"user_id"`
	Name        *string `json:"-" query:"name"`
	Guests      *bool   `json:"-" query:"guests"`
	Deactivated *bool   `json:"-" query:"deactivated"`
}

// ListAccountsResponse is one page of accounts. NextToken is empty on the
// last page.
type ListAccountsResponse struct {
	Users     []UserAccount `json:"users"`
	NextToken string        `json:"next_token,omitempty"`
	Total     int           `json:"total"`
}

// ListRoomsRequest pages through rooms known to the server.
// From is an offset that defaults to 0; Limit defaults to 100 on the server.
type ListRoomsRequest struct {
	From       *int    `json:"-" query:"from"`
	Limit      *int    `json:"-" query:"limit"`
	OrderBy    *string `json:"-" query:"order_by"`
	Dir        *string `json:"-" query:"dir"`
	SearchTerm *string `json:"-" query:"search_term"`
}

// RoomDetails describes one room in a list-rooms page.
type RoomDetails struct {
	RoomID             id.RoomID                     `json:"room_id"`
	Name               matrix.Optional[string]       `json:"name"`
	CanonicalAlias     matrix.Optional[id.RoomAlias] `json:"canonical_alias"`
	JoinedMembers      int                           `json:"joined_members"`
	JoinedLocalMembers int                           `json:"joined_local_members"`
	Version            string                        `json:"version"`
	Creator            matrix.Optional[id.UserID]    `json:"creator"`
	Encryption         matrix.Optional[string]       `json:"encryption"`
	Federatable        matrix.Flag                   `json:"federatable"`
	Public             matrix.Flag                   `json:"public"`
	JoinRules          matrix.Optional[string]       `json:"join_rules"`
	GuestAccess        matrix.Optional[string]       `json:"guest_access"`
	HistoryVisibility  matrix.Optional[string]       `json:"history_visibility"`
	StateEvents        int                           `json:"state_events"`
	RoomType           matrix.Optional[string]       `json:"room_type"`
}

// ListRoomsResponse is one page of rooms. NextBatch is nil on the last page.
type ListRoomsResponse struct {
	Rooms      []RoomDetails `json:"rooms"`
	Offset     int           `json:"offset"`
	TotalRooms int           `json:"total_rooms"`
	NextBatch  *int          `json:"next_batch,omitempty"`
	PrevBatch  *int          `json:"prev_batch,omitempty"`
}

// Room ordering keys accepted by ListRoomsRequest.OrderBy.
var RoomOrderKeys = []string{
	"name", "canonical_alias", "joined_members", "joined_local_members",
	"version", "creator", "encryption", "federatable", "public",
	"join_rules", "guest_access", "history_visibility", "state_events",
}

func (r ListRoomsRequest) Validate() error {
	if r.Dir != nil && *r.Dir != "f" && *r.Dir != "b" {
		return fmt.Errorf("dir must be \"f\" or \"b\", got %q", *r.Dir)
	}
	if r.OrderBy != nil {
		for _, key := range RoomOrderKeys {
			if key == *r.OrderBy {
				return nil
			}
		}
		return fmt.Errorf("unknown order_by %q", *r.OrderBy)
	}
	return nil
}

// PurgeRoomRequest removes every trace of a room from the database. The room
// must have no local members left.
type PurgeRoomRequest struct {
	RoomID id.RoomID `json:"room_id"`
}

func (r PurgeRoomRequest) Validate() error {
	return matrix.ValidateRoomID(r.RoomID)
}

// ResetPasswordRequest sets a new password. LogoutDevices defaults to true
// on the server, invalidating every access token of the account.
type ResetPasswordRequest struct {
	UserID        id.UserID `json:"-" path:"user_id"`
	NewPassword   string    `json:"new_password"`
	LogoutDevices *bool     `json:"logout_devices,omitempty"`
}

func (r ResetPasswordRequest) Validate() error {
	if r.NewPassword == "" {
		return errors.New("new password is empty")
	}
	return nil
}

// UserIsAdminResponse reports the server admin flag of an account.
type UserIsAdminResponse struct {
	Admin matrix.Flag `json:"admin"`
}

// JoinedRoomsResponse lists the rooms an account is joined to.
type JoinedRoomsResponse struct {
	JoinedRooms []id.RoomID `json:"joined_rooms"`
	Total       int         `json:"total"`
}

// DeactivateAccountRequest deactivates an account. With Erase the account's
// messages are hidden from users joining rooms later.
type DeactivateAccountRequest struct {
	UserID id.UserID `json:"-" path:"user_id"`
	Erase  *bool     `json:"erase,omitempty"`
}

// DeactivateAccountResponse reports whether third-party identifiers were
// unbound from the identity server ("success" or "no-support").
type DeactivateAccountResponse struct {
	IDServerUnbindResult string `json:"id_server_unbind_result"`
}

// Empty is the request or response of endpoints that carry no data.
type Empty struct{}
