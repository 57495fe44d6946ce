package globals

// ContextKey namespaces values this app stores on request contexts.
type ContextKey string

const (
	IdentityKey  ContextKey = "identity"
	RequestIDKey ContextKey = "requestId"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session"
