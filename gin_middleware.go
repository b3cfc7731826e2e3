package badgecheck

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openbadges/badgecheck/core"
)

// GinResultKey is the gin context key GinMiddleware stores the Result
// under.
const GinResultKey = "badgecheck.result"

// GinErrorHandler is called when verifying a badge from a gin request
// fails. It must abort the context.
type GinErrorHandler func(c *gin.Context, err error)

// DefaultGinErrorHandler aborts with the status and body NewErrorResponse
// maps err to.
func DefaultGinErrorHandler(c *gin.Context, err error) {
	status, body := NewErrorResponse(err)
	c.AbortWithStatusJSON(status, body)
}

// GinHandler returns a gin handler that verifies the badge carried by the
// request and responds with the Result as JSON.
func (v *Verifier) GinHandler(errorHandler ...GinErrorHandler) gin.HandlerFunc {
	onError := ginErrorHandler(errorHandler)
	return func(c *gin.Context) {
		result, err := v.verifyGin(c)
		if err != nil {
			onError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// GinMiddleware verifies the badge carried by the request and, when it
// verifies, stores the Result under GinResultKey and in the request
// context before calling the next handler.
func (v *Verifier) GinMiddleware(errorHandler ...GinErrorHandler) gin.HandlerFunc {
	onError := ginErrorHandler(errorHandler)
	return func(c *gin.Context) {
		result, err := v.verifyGin(c)
		if err != nil {
			onError(c, err)
			return
		}

		c.Set(GinResultKey, result)
		c.Request = c.Request.Clone(core.SetResult(c.Request.Context(), result))
		c.Next()
	}
}

func (v *Verifier) verifyGin(c *gin.Context) (*Result, error) {
	req, err := v.extractor(c.Request)
	if err != nil {
		return nil, requestError{details: err}
	}
	if req == nil {
		return nil, ErrArtifactMissing
	}
	return v.Verify(c.Request.Context(), req.Artifact, req.Options()...)
}

func ginErrorHandler(handlers []GinErrorHandler) GinErrorHandler {
	if len(handlers) > 0 && handlers[0] != nil {
		return handlers[0]
	}
	return DefaultGinErrorHandler
}

// GetGinResult returns the Result GinMiddleware stored in c.
func GetGinResult(c *gin.Context) (*Result, bool) {
	value, ok := c.Get(GinResultKey)
	if !ok {
		return nil, false
	}
	result, ok := value.(*Result)
	return result, ok
}
