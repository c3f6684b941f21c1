package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "sweethomes/pkg/errors"
)

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     bool
		wantMessage string
		wantUser    string
	}{
		{name: "valid object", body: `{"username":"admin","password":"pw"}`, wantUser: "admin"},
		{name: "trailing whitespace", body: "{\"username\":\"admin\"}\n", wantUser: "admin"},
		{name: "empty body", body: "", wantErr: true, wantMessage: "Request body cannot be empty"},
		{name: "unknown field", body: `{"username":"admin","role":"owner"}`, wantErr: true},
		{name: "second object", body: `{"username":"admin"} {"username":"other"}`, wantErr: true, wantMessage: "Request body must contain a single JSON object"},
		{name: "trailing garbage", body: `{"username":"admin"} x`, wantErr: true, wantMessage: "Request body must contain a single JSON object"},
		{name: "truncated", body: `{"username":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(tt.body))

			var dst loginBody
			err := DecodeJSON(req, &dst)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("DecodeJSON() error = %v", err)
				}
				if dst.Username != tt.wantUser {
					t.Errorf("username = %q, want %q", dst.Username, tt.wantUser)
				}
				return
			}

			appErr := apperrors.AsAppError(err)
			if err == nil || appErr.Code != apperrors.CodeInvalidInput {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if appErr.StatusCode() != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", appErr.StatusCode())
			}
			if tt.wantMessage != "" && appErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", appErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestQueryBool(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"confirm=true", true},
		{"confirm=1", true},
		{"confirm=%20TRUE%20", true},
		{"confirm=false", false},
		{"confirm=0", false},
		{"confirm=yes", false},
		{"confirm=", false},
		{"other=true", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/bookings/B1?"+tt.query, nil)
			if got := QueryBool(req, "confirm"); got != tt.want {
				t.Errorf("QueryBool(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
