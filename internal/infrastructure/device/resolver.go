// Package device resolves a stable device identity for incoming view
// requests. A device is identified, in priority order, by an explicit
// X-Device-ID header, a "device" query parameter, a previously issued
// cookie, or a fingerprint derived from the client address and user
// agent.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

const (
	headerName = "X-Device-ID"
	queryParam = "device"
)

// Resolver extracts device identifiers from HTTP requests and issues
// a cookie so subsequent requests from the same browser resolve to the
// same identity.
type Resolver struct {
	cookieName string
}

func NewResolver(cookieName string) *Resolver {
	return &Resolver{cookieName: cookieName}
}

// Resolve returns the device ID for the request and whether the ID was
// derived from a fingerprint rather than supplied by the client.
func (r *Resolver) Resolve(req *http.Request) (string, bool) {
	if id := strings.TrimSpace(req.Header.Get(headerName)); id != "" {
		return id, false
	}

	if id := strings.TrimSpace(req.URL.Query().Get(queryParam)); id != "" {
		return id, false
	}

	if c, err := req.Cookie(r.cookieName); err == nil && c.Value != "" {
		return c.Value, false
	}

	return fingerprint(req), true
}

// IssueCookie sets the device cookie so the next request from the same
// browser carries a stable identity.
func (r *Resolver) IssueCookie(w http.ResponseWriter, deviceID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     r.cookieName,
		Value:    deviceID,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// fingerprint hashes the client IP and user agent. Weaker than an
// explicit device ID, but good enough to collapse repeat views from
// the same browser when the client sends nothing else.
func fingerprint(req *http.Request) string {
	ip := clientIP(req)

	h := sha256.New()
	h.Write([]byte(ip))
	h.Write([]byte{0})
	h.Write([]byte(req.UserAgent()))

	return hex.EncodeToString(h.Sum(nil))
}

func clientIP(req *http.Request) string {
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
