package controllers

import (
	"net"
	"net/http"
	"strings"
	"time"

	h "eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
)

// dateLayout is the wire format for event dates and stats ranges.
const dateLayout = "2006-01-02 15:04:05"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// requireSelf checks that the authenticated user matches the userID path
// segment. On mismatch it writes 403 and returns false.
func requireSelf(w http.ResponseWriter, r *http.Request, pathUserID string) bool {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return false
	}
	if userID != pathUserID {
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "cannot act on behalf of another user")
		return false
	}
	return true
}

// clientIP returns the caller's IP, preferring the first X-Forwarded-For
// entry when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
