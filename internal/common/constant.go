package common

const (
	// AuthorizationHeaderName carries the bearer token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"

	// RequestIDHeaderName is echoed back on every response.
	RequestIDHeaderName = "X-Request-ID"

	DefaultPageLimit  = 10
	DefaultPageOffset = 0
	MaxPageLimit      = 100
)
