package auth

import "net/http"

// Error is a typed authentication failure. Status and Code map directly onto
// the response envelope; Message never contains token material.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func errMissingHeader() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Missing or invalid Authorization header"}
}

func errExpired() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "TOKEN_EXPIRED", Message: "Token expired"}
}

func errInvalidToken(reason string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "INVALID_TOKEN", Message: reason}
}

// errKeySetUnavailable is a 502, not a 401: the caller's credentials were
// never actually evaluated.
func errKeySetUnavailable() *Error {
	return &Error{Status: http.StatusBadGateway, Code: "JWKS_FETCH_FAILED", Message: "Unable to retrieve JWKS"}
}
