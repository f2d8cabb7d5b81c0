package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// contentSecurityPolicy allows same-origin assets and inline styles only
const contentSecurityPolicy = "default-src 'self';base-uri 'self';font-src 'self' https: data:;" +
	"form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';" +
	"script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';" +
	"upgrade-insecure-requests"

// SecurityConfig returns the security header settings shared by the API and web servers
func SecurityConfig() secure.Config {
	return secure.Config{
		CustomFrameOptionsValue: "SAMEORIGIN",
		ContentTypeNosniff:      true,
		ContentSecurityPolicy:   contentSecurityPolicy,
		IENoOpen:                true,
		ReferrerPolicy:          "no-referrer",
		STSSeconds:              15552000,
		STSIncludeSubdomains:    true,
		SSLProxyHeaders:         map[string]string{"X-Forwarded-Proto": "https"},
	}
}

// Security returns a middleware that sets security response headers.
// secure writes Strict-Transport-Security unconditionally, so it is removed again
// unless the request arrived over HTTPS, directly or through a proxy.
func Security() gin.HandlerFunc {
	headers := secure.New(SecurityConfig())
	return func(c *gin.Context) {
		headers(c)
		if c.IsAborted() {
			return
		}
		if !isHTTPS(c.Request) {
			c.Writer.Header().Del("Strict-Transport-Security")
		}
	}
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
