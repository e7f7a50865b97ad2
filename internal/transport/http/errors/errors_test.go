package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pribylovaa/go-diary/internal/identity"
	"github.com/pribylovaa/go-diary/internal/service"
	"github.com/stretchr/testify/require"
)

func TestToHTTP_BaseMapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"transport_invalid", ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"service_invalid", service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"not_configured", service.ErrNotConfigured, http.StatusBadRequest, "invalid_argument"},
		{"weak_password", identity.ErrWeakPassword, http.StatusBadRequest, "weak_password"},
		{"unauth", ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"bad_creds", identity.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"expired", identity.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{"revoked", identity.ErrTokenRevoked, http.StatusUnauthorized, "token_revoked"},
		{"perm_denied", ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{"not_found", service.ErrNotFound, http.StatusNotFound, "not_found"},
		{"email_taken", identity.ErrEmailTaken, http.StatusConflict, "already_exists"},
		{"unavailable", service.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"canceled", context.Canceled, StatusClientClosedRequest, "canceled"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded"},
		{"internal", service.ErrInternal, http.StatusInternalServerError, "internal"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_Wrapped(t *testing.T) {
	err := fmt.Errorf("service/entries/Update: %w", service.ErrNotFound)

	st, resp := ToHTTP(err)
	require.Equal(t, http.StatusNotFound, st)
	require.Equal(t, "not_found", resp.Error.Code)
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_RequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/diary", nil)
	req.Header.Set("X-Request-Id", "rid-1")

	WriteError(rr, req, ErrPermissionDenied)

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "rid-1", resp.Error.RequestID)
}
