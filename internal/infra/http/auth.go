package http

import (
	"strings"

	"revix/internal/config"

	"github.com/gin-gonic/gin"
)

const credentialQueryParam = "oauthToken"

// credential returns the bearer token from the Authorization header, falling
// back to the oauthToken query parameter the dashboard frontend sends.
func (s *Server) credential(c *gin.Context) string {
	if token := extractBearerToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	if s.cfg.AuthMode == config.AuthModeNone {
		return ""
	}
	return strings.TrimSpace(c.Query(credentialQueryParam))
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}
