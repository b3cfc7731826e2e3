package badgecheck

import (
	"net/http"

	"github.com/openbadges/badgecheck/core"
)

// Handler returns an http.Handler that verifies the badge carried by each
// request and writes the Result as JSON. Failures go to the configured
// ErrorHandler.
//
// Example:
//
//	http.Handle("/verify", verifier.Handler())
func (v *Verifier) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, ok := v.verifyRequest(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, result)
	})
}

// Middleware verifies the badge carried by each request and, when it
// verifies, stores the Result in the request context for next. Use
// GetResult to read it.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, ok := v.verifyRequest(w, r)
		if !ok {
			return
		}

		if v.logger != nil {
			v.logger.Debug("badge verification successful, setting result in context")
		}
		r = r.Clone(core.SetResult(r.Context(), result))
		next.ServeHTTP(w, r)
	})
}

// verifyRequest extracts and verifies the badge in r. It reports false
// after handing any failure to the error handler.
func (v *Verifier) verifyRequest(w http.ResponseWriter, r *http.Request) (*Result, bool) {
	if v.logger != nil {
		v.logger.Debug("extracting badge from request",
			"method", r.Method,
			"path", r.URL.Path)
	}

	req, err := v.extractor(r)
	if err != nil {
		if v.logger != nil {
			v.logger.Error("failed to extract badge from request",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path)
		}
		v.errorHandler(w, r, requestError{details: err})
		return nil, false
	}
	if req == nil {
		v.errorHandler(w, r, ErrArtifactMissing)
		return nil, false
	}

	result, err := v.Verify(r.Context(), req.Artifact, req.Options()...)
	if err != nil {
		if v.logger != nil {
			v.logger.Warn("badge verification failed",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path)
		}
		v.errorHandler(w, r, err)
		return nil, false
	}
	return result, true
}
