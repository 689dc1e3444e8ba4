// Package discovery locates and validates a user's homeserver through the
// client well-known document.
//
// # Overview
//
// Discovery is a strictly forward sequence:
//
//	ExtractHost -> FetchWellKnown -> ParseHomeserverURL -> ValidateHomeserver
//	  -> [ValidateIdentityServer] -> Success
//
// A [Machine] holds the current [State] and only moves to a legal successor;
// anything else is [ErrIllegalTransition]. Any step may end in Failed with an
// [*Error] whose [Kind] tells the caller what to do next:
//
//   - KindPrompt and KindFailPrompt: ask the user for a homeserver URL
//   - KindFailError: a server was advertised but is unusable; give up
//
// Every request made during discovery is anonymous.
package discovery
