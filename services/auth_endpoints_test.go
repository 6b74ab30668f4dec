package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterHandlerValidation(t *testing.T) {
	// Request validation runs before the auth service is touched, so a bare
	// endpoint struct is enough to exercise the rejected cases.
	e := &AuthEndpoints{}

	tests := []struct {
		name string
		body string
	}{
		{
			"mismatched confirmation",
			`{"email":"a@example.com","username":"alice","password":"longenough","password_confirm":"different1"}`,
		},
		{
			"missing confirmation",
			`{"email":"a@example.com","username":"alice","password":"longenough"}`,
		},
		{
			"missing email",
			`{"username":"alice","password":"longenough","password_confirm":"longenough"}`,
		},
		{
			"short password",
			`{"email":"a@example.com","username":"alice","password":"short","password_confirm":"short"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			e.RegisterHandler(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
