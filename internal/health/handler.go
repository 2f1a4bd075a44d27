package health

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"

	"github.com/tech-arch1tect/archive-inspector/internal/archive"
)

type Handler struct {
	fs         afero.Fs
	scratchDir string
}

type Status struct {
	Status     string `json:"status"`
	ScratchDir string `json:"scratch_dir,omitempty"`
	Error      string `json:"error,omitempty"`
}

func NewHandler(service *archive.Service) *Handler {
	dir := service.ScratchDir()
	if dir == "" {
		dir = os.TempDir()
	}
	return &Handler{fs: service.Fs(), scratchDir: dir}
}

// Health reports unhealthy when uploads could not be staged in the scratch
// directory.
func (h *Handler) Health(c echo.Context) error {
	ok, err := afero.DirExists(h.fs, h.scratchDir)
	if err != nil || !ok {
		msg := "scratch directory does not exist"
		if err != nil {
			msg = err.Error()
		}
		return c.JSON(http.StatusServiceUnavailable, Status{
			Status:     "unhealthy",
			ScratchDir: h.scratchDir,
			Error:      msg,
		})
	}

	return c.JSON(http.StatusOK, Status{Status: "healthy"})
}
