package auth

import (
	"context"
	"errors"
	"net/http"
)

type contextKey string

const userKey contextKey = "sessionUser"

// Auth guards routes that require a logged-in user. The session cookie's
// signature is verified before the token is resolved against the sessions
// table; the matching user is then stored in the request context, read-only
// for the remainder of the request.
func Auth(sr Repository, signer *Signer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {

			token, err := parseSessionCookie(request, signer)
			if err != nil {
				reportUnauthorised(w)
				return
			}

			user, err := sr.GetUserByToken(token)
			if err != nil {
				reportUnauthorised(w)
				return
			}

			next.ServeHTTP(w, request.WithContext(context.WithValue(request.Context(), userKey, user)))
		})
	}
}

// parseSessionCookie extracts and verifies the session token from the request's cookie.
func parseSessionCookie(request *http.Request, signer *Signer) (string, error) {
	cookie, err := request.Cookie(CookieName)
	if err != nil {
		return "", errors.New("missing session cookie")
	}
	return signer.Verify(cookie.Value)
}

// MustGetUser returns the authenticated user; it panics when the route lacks
// the Auth middleware, which signals a registration mistake rather than a
// runtime condition.
func MustGetUser(request *http.Request) User {
	user, ok := request.Context().Value(userKey).(User)
	if !ok {
		panic("missing auth middleware on route")
	}
	return user
}

// GetToken returns the verified session token from the request's cookie, for
// handlers that revoke their own session.
func GetToken(request *http.Request, signer *Signer) (string, error) {
	return parseSessionCookie(request, signer)
}

func reportUnauthorised(w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
}
