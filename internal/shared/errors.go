package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// State parameter errors
	ErrInvalidState = fmt.Errorf("invalid state parameter")

	// Upstream authorization errors. Both mean the stored Spotify credential is unusable.
	ErrTokenExpired  = fmt.Errorf("token invalid or expired")
	ErrTokenRejected = fmt.Errorf("token request rejected")

	// API and service errors
	ErrAPIRequest  = fmt.Errorf("API request failed")
	ErrBioUpdate   = fmt.Errorf("bio update failed")
	ErrLinkInvalid = fmt.Errorf("invalid link")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
