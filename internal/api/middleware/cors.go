package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS returns a middleware that allows cross-origin requests from origin only.
// Requests from other origins are still served, without an Access-Control-Allow-Origin header.
func CORS(origin string) gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders:       []string{"Origin", "Accept", "Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:       []string{RequestIDHeader},
		AllowCredentials:     true,
		OptionsSuccessStatus: http.StatusNoContent,
	})

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)

		// Preflight requests end here
		if ctx.Request.Method == http.MethodOptions &&
			ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
