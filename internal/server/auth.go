package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// ResolveToken picks the bearer token the service requires for mutations.
// An explicit token wins; otherwise it is read from file, which must not be
// readable by group or others. An empty result disables authentication.
func ResolveToken(token, file string) (string, error) {
	if t := stripBearer(strings.TrimSpace(token)); t != "" {
		return t, nil
	}
	if file == "" {
		return "", nil
	}
	fi, err := os.Stat(file)
	if err != nil {
		return "", fmt.Errorf("token file: %w", err)
	}
	if fi.Mode()&0o077 != 0 {
		return "", fmt.Errorf("token file %s: permissions %#o too open, want %#o",
			file, fi.Mode().Perm(), fi.Mode().Perm()&0o700)
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("token file: %w", err)
	}
	t := stripBearer(strings.TrimSpace(string(b)))
	if t == "" {
		return "", fmt.Errorf("token file %s: empty token", file)
	}
	return t, nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}

// requireToken rejects requests that do not carry the configured token.
func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	want := []byte(s.token)
	return func(w http.ResponseWriter, r *http.Request) {
		got := []byte(stripBearer(strings.TrimSpace(r.Header.Get("Authorization"))))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="todoer"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
