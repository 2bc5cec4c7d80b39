package middleware

import (
	"net"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// AllowedHosts rejects requests whose Host header isn't in the configured
// list. An empty list disables the check, a "*" entry allows everything
func AllowedHosts(hosts []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(hosts) == 0 || slices.Contains(hosts, "*") {
			c.Next()
			return
		}

		host := c.Request.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}

		if !slices.Contains(hosts, host) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Invalid Host header",
			})
			return
		}

		c.Next()
	}
}
