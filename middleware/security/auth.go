package security

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ChatRelay/tools/errs"
	jwtsec "ChatRelay/tools/security"
)

// CtxIdentityKey is where the middleware stores the verified identity;
// downstream handlers read it back with Current().
const CtxIdentityKey = "identity"

type Options struct {
	JWT jwtsec.Options
}

// Middleware authenticates requests by the `token` cookie. REST-side
// counterpart of the websocket handshake validation, except here a
// missing or bad credential is a hard 401.
func Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie("token")
		if err != nil || cookie.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrNoToken)
			return
		}
		ident, err := jwtsec.Verify(opts.JWT, cookie.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}
		c.Set(CtxIdentityKey, ident)
		c.Next()
	}
}

// Current returns the identity placed by Middleware.
func Current(c *gin.Context) (jwtsec.Identity, bool) {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return jwtsec.Identity{}, false
	}
	ident, ok := v.(jwtsec.Identity)
	return ident, ok
}
