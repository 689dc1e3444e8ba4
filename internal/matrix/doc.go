// Package matrix implements the typed request/response core shared by every
// Matrix and Synapse admin API call.
//
// # Overview
//
// An [Endpoint] is a declarative descriptor: HTTP method, path template,
// expected success status and, as type parameters, the access marker and the
// request/response pair. Encoding and decoding are derived from the request
// type's struct tags, so no endpoint carries hand-written wire code:
//
//	type QueryUserRequest struct {
//	    UserID id.UserID `json:"-" path:"user_id"`
//	}
//
//	var QueryUser = &matrix.Endpoint[matrix.Bearer, QueryUserRequest, UserAccount]{
//	    Name:   "query_user",
//	    Method: http.MethodGet,
//	    Path:   "/_synapse/admin/v2/users/{user_id}",
//	}
//
// Fields tagged path:"name" fill the matching {name} segment, fields tagged
// query:"name" become query parameters, and everything else is the JSON body.
//
// # Channels
//
// A [Channel] binds a [Transport] to a base URL. [Call] only accepts
// endpoints whose access marker is [Public], so an endpoint that needs a
// credential cannot be sent through an anonymous channel: the program does not
// compile. [CallAuthenticated] takes an [AuthenticatedChannel], which cannot be
// constructed without an access token, and attaches the token exactly when the
// endpoint is marked [Bearer].
//
// # Errors
//
// Failures are reported as one of four types, matched with errors.As:
//
//   - *TransportError: the request never produced a response
//   - *SerializationError: the request value could not be encoded
//   - *DeserializationError: a success response did not match the expected shape
//   - *HTTPError: the server answered with an unexpected status
//
// Nothing is retried.
package matrix
