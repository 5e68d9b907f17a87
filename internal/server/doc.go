// Package server provides HTTP routing, middleware, and the login callback used by `spotboard auth login`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Implicit Grant Callback
//
// Spotify returns the access token in the redirect URL fragment, which browsers never send to a server.
// [ImplicitGrantHandler] therefore serves a small page at /callback whose script posts location.hash
// to /token. The handler checks the state value carried in the fragment, extracts the token and
// sends the result through a channel.
//
// It only processes one token submission to prevent replay.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
