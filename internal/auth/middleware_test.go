package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/tech-arch1tect/archive-inspector/internal/logging"
)

func serve(token, header string) *httptest.ResponseRecorder {
	e := echo.New()
	g := e.Group("/api")
	g.Use(TokenMiddleware(token, logging.NewNop()))
	g.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"open when unconfigured", "", "", http.StatusOK},
		{"missing header", "secret", "", http.StatusUnauthorized},
		{"wrong scheme", "secret", "Basic secret", http.StatusUnauthorized},
		{"wrong token", "secret", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "secret", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.token, tt.header)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHashToken(t *testing.T) {
	assert.Empty(t, HashToken(""))
	assert.Len(t, HashToken("secret"), 16)
	assert.NotEqual(t, HashToken("a"), HashToken("b"))
}
