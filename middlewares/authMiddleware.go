package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/Ruzakiff/wealthtogether/appctx"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/gin-gonic/gin"
)

type authString string

// AuthMiddleware validates the bearer token when one is present and stores
// the caller's identity on the request context. Requests without a token
// pass through; handlers that need an identity reject them via RequireAuth.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		if auth == "" {
			c.Next()
			return
		}

		auth = strings.TrimPrefix(auth, "Bearer ")

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		customClaim, _ := validate.Claims.(*utils.JwtCustomClaim)

		ctx := context.WithValue(c.Request.Context(), authString("auth"), customClaim)
		ctx = appctx.Set(ctx, appctx.ContextKeyUserId, customClaim.ID)
		ctx = appctx.Set(ctx, appctx.ContextKeyUserEmail, customClaim.Email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth aborts with 401 when AuthMiddleware did not establish an
// identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CtxValue(c.Request.Context()) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func CtxValue(ctx context.Context) *utils.JwtCustomClaim {
	raw, _ := ctx.Value(authString("auth")).(*utils.JwtCustomClaim)
	return raw
}
