// ABOUTME: One descriptor per Matrix client or Synapse admin endpoint
// ABOUTME: Access marker and request/response pair are fixed here and nowhere else

package synapse

import (
	"net/http"

	"maunium.net/go/mautrix"

	"github.com/florianjacob/synadminctl/internal/matrix"
)

// Discovery and login.
var (
	DiscoverClient = &matrix.Endpoint[matrix.Public, Empty, DiscoveryInfo]{
		Name:   "discover_client",
		Method: http.MethodGet,
		Path:   "/.well-known/matrix/client",
	}

	ClientVersions = &matrix.Endpoint[matrix.Public, Empty, VersionsResponse]{
		Name:   "client_versions",
		Method: http.MethodGet,
		Path:   "/_matrix/client/versions",
	}

	IdentityStatus = &matrix.Endpoint[matrix.Public, Empty, Empty]{
		Name:   "identity_status",
		Method: http.MethodGet,
		Path:   "/_matrix/identity/api/v1",
	}

	Login = &matrix.Endpoint[matrix.Public, mautrix.ReqLogin, mautrix.RespLogin]{
		Name:   "login",
		Method: http.MethodPost,
		Path:   "/_matrix/client/r0/login",
	}

	Logout = &matrix.Endpoint[matrix.Bearer, Empty, Empty]{
		Name:   "logout",
		Method: http.MethodPost,
		Path:   "/_matrix/client/r0/logout",
	}

	WhoAmI = &matrix.Endpoint[matrix.Bearer, Empty, mautrix.RespWhoami]{
		Name:   "whoami",
		Method: http.MethodGet,
		Path:   "/_matrix/client/r0/account/whoami",
	}
)

// Synapse admin API.
var (
	ServerVersion = &matrix.Endpoint[matrix.Public, Empty, ServerVersionResponse]{
		Name:   "server_version",
		Method: http.MethodGet,
		Path:   "/_synapse/admin/v1/server_version",
	}

	QueryUser = &matrix.Endpoint[matrix.Bearer, UserRequest, UserAccount]{
		Name:   "query_user",
		Method: http.MethodGet,
		Path:   "/_synapse/admin/v2/users/{user_id}",
	}

	// CreateModifyAccount answers 201 when it created the account and 200
	// when it modified an existing one.
	CreateModifyAccount = &matrix.Endpoint[matrix.Bearer, CreateModifyAccountRequest, UserAccount]{
		Name:    "create_modify_account",
		Method:  http.MethodPut,
		Path:    "/_synapse/admin/v2/users/{user_id}",
		Success: []int{http.StatusOK, http.StatusCreated},
	}

	ListAccounts = &matrix.Endpoint[matrix.Bearer, ListAccountsRequest, ListAccountsResponse]{
		Name:   "list_accounts",
		Method: http.MethodGet,
		Path:   "/_synapse/admin/v2/users",
	}

	ListRooms = &matrix.Endpoint[matrix.Bearer, ListRoomsRequest, ListRoomsResponse]{
		Name:   "list_rooms",
		Method: http.MethodGet,
		Path:   "/_synapse/admin/v1/rooms",
	}

	PurgeRoom = &matrix.Endpoint[matrix.Bearer, PurgeRoomRequest, Empty]{
		Name:   "purge_room",
		Method: http.MethodPost,
		Path:   "/_synapse/admin/v1/purge_room",
	}

	ResetPassword = &matrix.Endpoint[matrix.Bearer, ResetPasswordRequest, Empty]{
		Name:   "reset_password",
		Method: http.MethodPost,
		Path:   "/_synapse/admin/v1/reset_password/{user_id}",
	}

	UserIsAdmin = &matrix.Endpoint[matrix.Bearer, UserRequest, UserIsAdminResponse]{
		Name:   "user_is_admin",
		Method: http.MethodGet,
		Path:   "/_synapse/admin/v1/users/{user_id}/admin",
	}

	ListJoinedRooms = &matrix.Endpoint[matrix.Bearer, UserRequest, JoinedRoomsResponse]{
		Name:   "list_joined_rooms",
		Method: http.MethodGet,
		Path:   "/_synapse/admin/v1/users/{user_id}/joined_rooms",
	}

	DeactivateAccount = &matrix.Endpoint[matrix.Bearer, DeactivateAccountRequest, DeactivateAccountResponse]{
		Name:   "deactivate_account",
		Method: http.MethodPost,
		Path:   "/_synapse/admin/v1/deactivate/{user_id}",
	}
)
