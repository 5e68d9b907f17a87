// Package auth owns the bearer token lifecycle for the implicit grant login.
//
// The token is process-wide state with a short, explicit lifecycle:
//
//  1. Login redirects the browser to [AuthorizeURL]. Spotify returns control with the
//     token in the redirect URL fragment (#access_token=...).
//  2. [ExtractFromFragment] pulls the token out of that fragment.
//  3. [Resolve] prefers a freshly extracted token (saving it), falls back to the
//     persisted one, and otherwise reports [shared.ErrNotAuthenticated].
//  4. Logout calls [Store.Clear].
//
// There is no refresh token in the implicit grant. Expiry is only discovered when the
// API rejects a request, which the services package reports as [shared.ErrTokenExpired].
package auth
