// Package synapse declares the Matrix client and Synapse admin endpoints used
// by synadminctl, together with their request and response types.
//
// # Overview
//
// Each endpoint is a single [matrix.Endpoint] value. The type parameters fix
// whether a credential is required and which response type a request
// produces; the struct tags on the request type drive the wire encoding.
//
// Discovery and login endpoints ([DiscoverClient], [ClientVersions],
// [IdentityStatus], [Login], [ServerVersion]) are [matrix.Public] and may be
// sent through an anonymous channel. Everything under /_synapse/admin except
// the server version is [matrix.Bearer].
//
// # Normalisation
//
// Synapse reports several booleans as 0/1 and some optional strings as "".
// Those fields use [matrix.Flag] and [matrix.Optional] so callers see one
// representation.
//
// # AdminClient
//
// [AdminClient] wraps an authenticated channel with one method per
// operation, which is what the CLI uses.
package synapse
