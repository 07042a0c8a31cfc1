package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campus-market/trading-api/internal/core/domain"
)

func render(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	return rec.Code, body
}

func TestHTTPErrorHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid argument", domain.ErrInvalidArgument, http.StatusBadRequest},
		{"item not available", domain.ErrItemNotAvailable, http.StatusBadRequest},
		{"bad credential", domain.ErrBadCredential, http.StatusUnauthorized},
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"item not found", domain.ErrItemNotFound, http.StatusNotFound},
		{"order not found", domain.ErrOrderNotFound, http.StatusNotFound},
		{"message not found", domain.ErrMessageNotFound, http.StatusNotFound},
		{"duplicate user", domain.ErrDuplicateUser, http.StatusConflict},
		{"unknown order status", domain.ErrInvalidOrderStatus, http.StatusBadRequest},
		{"invalid transition", domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := render(t, tc.err)
			if code != tc.code {
				t.Errorf("status %d, want %d", code, tc.code)
			}
			if body["success"] != false {
				t.Error("error envelope must set success=false")
			}
			if body["error"] == "" {
				t.Error("error envelope must carry a message")
			}
		})
	}
}

func TestHTTPErrorHandler_WrappedDomainError(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w", domain.ErrItemNotAvailable)
	code, _ := render(t, wrapped)
	if code != http.StatusBadRequest {
		t.Errorf("wrapped domain error: status %d, want %d", code, http.StatusBadRequest)
	}
}

func TestHTTPErrorHandler_EchoHTTPError(t *testing.T) {
	code, body := render(t, echo.NewHTTPError(http.StatusTeapot, "short and stout"))
	if code != http.StatusTeapot {
		t.Errorf("status %d, want %d", code, http.StatusTeapot)
	}
	if body["error"] != "short and stout" {
		t.Errorf("unexpected message: %v", body["error"])
	}
}

func TestHTTPErrorHandler_UnknownErrorIsOpaque(t *testing.T) {
	code, body := render(t, errors.New("password for db is hunter2"))
	if code != http.StatusInternalServerError {
		t.Errorf("status %d, want 500", code)
	}
	if body["error"] != "internal server error" {
		t.Errorf("internal details leaked: %v", body["error"])
	}
}
