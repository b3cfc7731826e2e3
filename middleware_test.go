package badgecheck

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbadges/badgecheck/bakery"
)

func bakedPNG(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	baked, err := bakery.Bake(buf.Bytes(), payload)
	require.NoError(t, err)
	return baked
}

func Test_Handler(t *testing.T) {
	testCases := []struct {
		name           string
		options        []Option
		method         string
		target         string
		contentType    string
		body           io.Reader
		wantStatusCode int
		wantCode       string
		wantVersion    string
	}{
		{
			name:           "it verifies a JSON assertion",
			method:         http.MethodPost,
			target:         "/verify?recipient=" + recipient,
			contentType:    "application/json",
			body:           strings.NewReader(v10Assertion),
			wantStatusCode: http.StatusOK,
			wantVersion:    "v1_0strict",
		},
		{
			name:           "it verifies an envelope carrying recipients",
			method:         http.MethodPost,
			target:         "/verify",
			contentType:    "application/json",
			body:           strings.NewReader(`{"artifact": ` + v10Assertion + `, "recipients": ["` + recipient + `"]}`),
			wantStatusCode: http.StatusOK,
			wantVersion:    "v1_0strict",
		},
		{
			name:           "it fails with 400 when the body is empty",
			method:         http.MethodPost,
			target:         "/verify",
			body:           http.NoBody,
			wantStatusCode: http.StatusBadRequest,
			wantCode:       ErrorCodeArtifactMissing,
		},
		{
			name:           "it fails with 400 when the input is not a badge",
			method:         http.MethodPost,
			target:         "/verify",
			contentType:    "text/plain",
			body:           strings.NewReader("hello"),
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "format_invalid",
		},
		{
			name:           "it fails with 422 when the recipient does not match",
			method:         http.MethodPost,
			target:         "/verify?recipient=someone@else.org",
			contentType:    "application/json",
			body:           strings.NewReader(v10Assertion),
			wantStatusCode: http.StatusUnprocessableEntity,
			wantCode:       "semantic_invalid",
		},
		{
			name: "it fails with 400 when the extractor errors",
			options: []Option{
				WithArtifactExtractor(func(r *http.Request) (*Request, error) {
					return nil, errors.New("artifact extractor error")
				}),
			},
			method:         http.MethodPost,
			target:         "/verify",
			body:           http.NoBody,
			wantStatusCode: http.StatusBadRequest,
			wantCode:       ErrorCodeInvalidRequest,
		},
		{
			name: "it calls the custom error handler when verification fails",
			options: []Option{
				WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
					writeJSON(w, http.StatusTeapot, ErrorResponse{Code: "custom", Message: err.Error()})
				}),
			},
			method:         http.MethodPost,
			target:         "/verify",
			contentType:    "text/plain",
			body:           strings.NewReader("hello"),
			wantStatusCode: http.StatusTeapot,
			wantCode:       "custom",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			v := newVerifier(t, testCase.options...)

			req := httptest.NewRequest(testCase.method, testCase.target, testCase.body)
			if testCase.contentType != "" {
				req.Header.Set("Content-Type", testCase.contentType)
			}
			rec := httptest.NewRecorder()

			v.Handler().ServeHTTP(rec, req)

			assert.Equal(t, testCase.wantStatusCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if testCase.wantCode != "" {
				assert.Equal(t, testCase.wantCode, body["code"])
			}
			if testCase.wantVersion != "" {
				assert.Equal(t, testCase.wantVersion, body["version"])
			}
		})
	}
}

func Test_Middleware(t *testing.T) {
	var seen *Result
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = MustGetResult(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("it stores the result for the next handler", func(t *testing.T) {
		seen = nil
		v := newVerifier(t, WithArtifactExtractor(FormFileArtifactExtractor("badge")))

		body, contentType := multipartBody(t, "badge", bakedPNG(t, v10Assertion), map[string]string{"recipient": recipient})
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		v.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "v1_0strict", seen.Version)
		assert.Equal(t, recipient, seen.Report.MatchedIdentifier)
	})

	t.Run("it does not call the next handler when verification fails", func(t *testing.T) {
		seen = nil
		v := newVerifier(t)

		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(v10Assertion))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		v.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Nil(t, seen)
	})
}
