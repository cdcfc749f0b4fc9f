package domain

// Principal is the identity derived from a verified bearer token. It lives
// for the duration of a single request and is never persisted.
type Principal struct {
	Sub      string
	Username string
	Scope    string
	Groups   []string
	Claims   map[string]any
}
