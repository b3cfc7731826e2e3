package badgecheck

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbadges/badgecheck/badge"
	"github.com/openbadges/badgecheck/core"
	"github.com/openbadges/badgecheck/schema"
)

func TestNewErrorResponse(t *testing.T) {
	violations := []schema.Violation{{Field: "/name", Constraint: "required", Message: "missing property"}}
	failures := []core.Failure{{Check: "badge_belongs_to_recipient", Message: "no identifier matched"}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		want       ErrorResponse
	}{
		{
			name:       "it maps a missing artifact to 400",
			err:        ErrArtifactMissing,
			wantStatus: http.StatusBadRequest,
			want:       ErrorResponse{Code: ErrorCodeArtifactMissing, Message: "No badge was provided."},
		},
		{
			name:       "it maps an unreadable request to 400",
			err:        requestError{details: errors.New("boom")},
			wantStatus: http.StatusBadRequest,
			want:       ErrorResponse{Code: ErrorCodeInvalidRequest, Message: "invalid verification request: boom"},
		},
		{
			name:       "it maps format errors to 400",
			err:        &core.FormatError{Code: core.ErrorCodeImageNotBaked, Message: "image does not contain badge data"},
			wantStatus: http.StatusBadRequest,
			want:       ErrorResponse{Code: core.ErrorCodeImageNotBaked, Message: "image does not contain badge data"},
		},
		{
			name:       "it maps classification errors to 422",
			err:        &core.ClassificationError{Code: core.ErrorCodeVersionUnclassifiable, Message: "could not determine the badge version"},
			wantStatus: http.StatusUnprocessableEntity,
			want:       ErrorResponse{Code: core.ErrorCodeVersionUnclassifiable, Message: "could not determine the badge version"},
		},
		{
			name:       "it maps resource errors to 424 naming the URL",
			err:        &core.ResourceError{URL: badgeURL, Role: badge.RoleBadgeClass},
			wantStatus: http.StatusFailedDependency,
			want: ErrorResponse{
				Code:    core.ErrorCodeResourceFetchFailed,
				Message: "could not fetch badgeclass from " + badgeURL,
				URL:     badgeURL,
			},
		},
		{
			name:       "it maps structural errors to 422 with violations",
			err:        &core.StructuralValidationError{Role: badge.RoleBadgeClass, Violations: violations},
			wantStatus: http.StatusUnprocessableEntity,
			want: ErrorResponse{
				Code:       core.ErrorCodeStructureInvalid,
				Message:    "badgeclass is not structurally valid: /name: missing property",
				Violations: violations,
			},
		},
		{
			name:       "it maps semantic errors to 422 with failures",
			err:        &core.SemanticValidationError{Failures: failures},
			wantStatus: http.StatusUnprocessableEntity,
			want: ErrorResponse{
				Code:     core.ErrorCodeSemanticInvalid,
				Message:  "badge failed verification: badge_belongs_to_recipient: no identifier matched",
				Failures: failures,
			},
		},
		{
			name:       "it maps unsupported versions to 422",
			err:        &core.UnsupportedVersionError{Version: "v0_5"},
			wantStatus: http.StatusUnprocessableEntity,
			want:       ErrorResponse{Code: core.ErrorCodeVersionUnsupported, Message: "badge version v0_5 is not supported"},
		},
		{
			name:       "it finds wrapped verification errors",
			err:        fmt.Errorf("wrapped: %w", &core.UnsupportedVersionError{Version: "v0_5"}),
			wantStatus: http.StatusUnprocessableEntity,
			want:       ErrorResponse{Code: core.ErrorCodeVersionUnsupported, Message: "wrapped: badge version v0_5 is not supported"},
		},
		{
			name:       "it hides other errors behind a 500",
			err:        errors.New("database exploded"),
			wantStatus: http.StatusInternalServerError,
			want:       ErrorResponse{Code: core.ErrorCodeInternal, Message: "Something went wrong while verifying the badge."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := NewErrorResponse(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.want, body)
		})
	}
}

func TestDefaultErrorHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verify", nil)

	DefaultErrorHandler(rec, req, &core.ResourceError{URL: issuerURL, Role: badge.RoleIssuer})

	assert.Equal(t, http.StatusFailedDependency, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"code":    "resource_fetch_failed",
		"message": "could not fetch issuer from " + issuerURL,
		"url":     issuerURL,
	}, body)
}

func TestRequestError(t *testing.T) {
	details := errors.New("failed to read request body")
	err := requestError{details: details}

	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.ErrorIs(t, err, details)
	assert.NotErrorIs(t, err, ErrArtifactMissing)
	assert.EqualError(t, err, "invalid verification request: failed to read request body")
}
