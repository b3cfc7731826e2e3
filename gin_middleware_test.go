package badgecheck

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GinHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name           string
		errorHandler   []GinErrorHandler
		target         string
		body           string
		wantStatusCode int
		wantCode       string
	}{
		{
			name:           "it verifies a badge",
			target:         "/verify?recipient=" + recipient,
			body:           v10Assertion,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "it fails when no badge is sent",
			target:         "/verify",
			wantStatusCode: http.StatusBadRequest,
			wantCode:       ErrorCodeArtifactMissing,
		},
		{
			name:           "it fails when the recipient does not match",
			target:         "/verify?recipient=someone@else.org",
			body:           v10Assertion,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantCode:       "semantic_invalid",
		},
		{
			name: "it calls the custom error handler",
			errorHandler: []GinErrorHandler{func(c *gin.Context, err error) {
				c.AbortWithStatusJSON(http.StatusTeapot, gin.H{"code": "custom"})
			}},
			target:         "/verify",
			wantStatusCode: http.StatusTeapot,
			wantCode:       "custom",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			v := newVerifier(t)
			router := gin.New()
			router.POST("/verify", v.GinHandler(testCase.errorHandler...))

			req := httptest.NewRequest(http.MethodPost, testCase.target, strings.NewReader(testCase.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, testCase.wantStatusCode, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if testCase.wantCode != "" {
				assert.Equal(t, testCase.wantCode, body["code"])
			} else {
				assert.Equal(t, "v1_0strict", body["version"])
			}
		})
	}
}

func Test_GinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	v := newVerifier(t)
	router := gin.New()
	router.POST("/claim", v.GinMiddleware(), func(c *gin.Context) {
		result, ok := GetGinResult(c)
		require.True(t, ok)
		fromContext, err := GetResult(c.Request.Context())
		require.NoError(t, err)
		assert.Same(t, result, fromContext)

		c.String(http.StatusOK, result.Report.MatchedIdentifier)
	})

	t.Run("it stores the result and calls the next handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/claim?recipient="+recipient, strings.NewReader(v10Assertion))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, recipient, rec.Body.String())
	})

	t.Run("it aborts when verification fails", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/claim", strings.NewReader("not a badge"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"format_invalid"`)
	})
}

func TestGetGinResult(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetGinResult(c)
	assert.False(t, ok)

	c.Set(GinResultKey, "not a result")
	_, ok = GetGinResult(c)
	assert.False(t, ok)
}
