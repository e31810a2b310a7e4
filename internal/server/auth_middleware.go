package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenAuth admits requests carrying the shared token, either as the token
// query parameter or as a bearer Authorization header. An empty token admits
// everyone.
type TokenAuth struct {
	Token string
}

func (m TokenAuth) Check(r *http.Request) error {
	if m.Token == "" {
		return nil
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(m.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
