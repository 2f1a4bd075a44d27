package health

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/tech-arch1tect/archive-inspector/config"
	"github.com/tech-arch1tect/archive-inspector/internal/archive"
	"github.com/tech-arch1tect/archive-inspector/internal/logging"
)

func check(t *testing.T, scratchDir string) *httptest.ResponseRecorder {
	t.Helper()

	service := archive.NewService(&config.Config{ScratchDir: scratchDir}, logging.NewNop())
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	assert.NoError(t, NewHandler(service).Health(c))
	return rec
}

func TestHealth(t *testing.T) {
	rec := check(t, t.TempDir())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHealthMissingScratchDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	rec := check(t, missing)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), "scratch directory does not exist")
}
