// Package services implements the two upstream APIs a link depends on.
//
// # Spotify
//
// [SpotifyClient] implements [SpotifyService] on top of [oauth2.Config] with client credentials sent in the
// Authorization header. It covers the authorization code grant used by the callback handler, the refresh token grant
// used by every sync, and the currently-playing endpoint.
//
// Token endpoint failures are classified by status so callers can tell a dead credential from a transient outage:
//   - 400 : [shared.ErrTokenRejected], the refresh token or code was refused (revoked, invalid_grant)
//   - 401 : [shared.ErrTokenExpired], client or token authentication failed
//   - anything else (transport, 5xx, malformed body) : [shared.ErrAPIRequest]
//
// The currently-playing endpoint answers 204 when the user has no active device. That, and a 200 response without a
// track item (an ad or a podcast episode), are reported as (nil, nil) rather than an error.
//
// # GitHub
//
// [GithubClient] implements [BioService] with go-github, authenticating each request with basic auth (username and
// personal access token) through [github.BasicAuthTransport]. Every failure is reported as [shared.ErrBioUpdate].
package services
