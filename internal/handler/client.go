package handler

import (
	"net/http"
	"strings"

	"medportal/internal/middleware"
	"medportal/internal/model"
)

const maxUserAgentLen = 512

// clientFromRequest captures the caller address and user agent for audit
// records.
func clientFromRequest(r *http.Request) model.ClientInfo {
	ua := strings.TrimSpace(r.UserAgent())
	if len(ua) > maxUserAgentLen {
		ua = ua[:maxUserAgentLen]
	}

	return model.ClientInfo{
		IPAddress: middleware.ClientIP(r),
		UserAgent: ua,
	}
}
