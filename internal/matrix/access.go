// ABOUTME: Access marker types that encode an endpoint's authentication requirement
// ABOUTME: Public endpoints never see a credential, Bearer endpoints always get one

package matrix

// Access is implemented by the marker types used as the first type parameter
// of Endpoint. The set is closed: only this package can add markers.
type Access interface {
	requiresAuth() bool
}

// Public marks endpoints that are called without an access token.
type Public struct{}

func (Public) requiresAuth() bool { return false }

// Bearer marks endpoints that require "Authorization: Bearer <token>".
type Bearer struct{}

func (Bearer) requiresAuth() bool { return true }
