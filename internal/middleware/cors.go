// Package middleware holds the gin middleware shared by every route.
package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORS returns a CORS middleware. corsOrigins is a comma-separated list of
// allowed origins; "*" or an empty string allows all origins.
func NewCORS(corsOrigins string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       24 * time.Hour,
	}

	origins := ParseOrigins(corsOrigins)
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}

// ParseOrigins splits a comma-separated origin list. It returns nil when all
// origins are allowed.
func ParseOrigins(corsOrigins string) []string {
	corsOrigins = strings.TrimSpace(corsOrigins)
	if corsOrigins == "" || corsOrigins == "*" {
		return nil
	}

	var origins []string
	for _, o := range strings.Split(corsOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
