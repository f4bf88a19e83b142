// Package common contains constants and small helpers shared by the
// cloudbox client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on API requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes the token inside the Authorization header.
	BearerScheme = "Bearer"

	// AuthTokenKey is the durable storage key of the session token.
	AuthTokenKey = "authToken"

	// UsernameKey is the durable storage key of the logged-in username.
	UsernameKey = "username"

	// UploadFieldName is the multipart field the server reads the file from.
	UploadFieldName = "file"
)

// BearerValue formats token as an Authorization header value.
func BearerValue(token string) string {
	return BearerScheme + " " + token
}
