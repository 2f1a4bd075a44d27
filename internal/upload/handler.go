package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/tech-arch1tect/archive-inspector/config"
	"github.com/tech-arch1tect/archive-inspector/internal/archive"
	"github.com/tech-arch1tect/archive-inspector/internal/audit"
	"github.com/tech-arch1tect/archive-inspector/internal/common"
	"github.com/tech-arch1tect/archive-inspector/internal/logging"
	"github.com/tech-arch1tect/archive-inspector/internal/validation"
)

const uploadPrefix = "xmlvalidator_upload_"

type Handler struct {
	service      *archive.Service
	auditService *audit.Service
	logger       *logging.Logger
	maxSize      int64
}

func NewHandler(cfg *config.Config, service *archive.Service, auditService *audit.Service, logger *logging.Logger) *Handler {
	return &Handler{
		service:      service,
		auditService: auditService,
		logger:       logger.With(zap.String("handler", "upload")),
		maxSize:      cfg.MaxUploadSizeBytes(),
	}
}

func (h *Handler) tooLargeMessage() string {
	return fmt.Sprintf("File size exceeds maximum allowed size of %s. Please upload a smaller file.",
		humanize.IBytes(uint64(h.maxSize)))
}

func (h *Handler) reject(c echo.Context, status int, archiveName, reason string) error {
	h.auditService.LogRejection(logging.RequestID(c), c.RealIP(), archiveName, reason)
	if status == http.StatusRequestEntityTooLarge {
		return common.SendPayloadTooLarge(c, reason)
	}
	return common.SendBadRequest(c, reason)
}

// emptyFilePart reports whether the form carried a "file" part without a
// filename. The multipart reader files such parts under Value, not File.
func emptyFilePart(c echo.Context) bool {
	form := c.Request().MultipartForm
	if form == nil {
		return false
	}
	_, ok := form.Value["file"]
	return ok
}

func (h *Handler) Upload(c echo.Context) error {
	req := c.Request()
	if req.ContentLength > h.maxSize {
		return h.reject(c, http.StatusRequestEntityTooLarge, "", h.tooLargeMessage())
	}
	req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxSize)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return h.reject(c, http.StatusRequestEntityTooLarge, "", h.tooLargeMessage())
		}
		if errors.Is(err, http.ErrMissingFile) && emptyFilePart(c) {
			return h.reject(c, http.StatusBadRequest, "", "No file selected")
		}
		return h.reject(c, http.StatusBadRequest, "", "No file provided")
	}

	if err := validation.ValidateUploadFilename(file.Filename); err != nil {
		if errors.Is(err, validation.ErrMissingFilename) {
			return h.reject(c, http.StatusBadRequest, file.Filename, "No file selected")
		}
		return h.reject(c, http.StatusBadRequest, file.Filename, "Invalid file type. Only ZIP files are allowed.")
	}

	target, err := validation.NormalizeTargetName(c.FormValue("target_xml"))
	if err != nil {
		return h.reject(c, http.StatusBadRequest, file.Filename, "Invalid target file name")
	}

	path, err := h.saveUpload(file)
	if err != nil {
		h.logger.Error("failed to store upload",
			zap.String("request_id", logging.RequestID(c)),
			zap.String("filename", file.Filename),
			zap.Error(err),
		)
		return common.SendInternalError(c, fmt.Sprintf("Error processing file: %v", err))
	}
	defer h.removeUpload(path)

	result := h.service.Inspect(path, target)

	failureReason := ""
	if !result.Success {
		failureReason = result.Message
	}
	h.auditService.LogInspection(logging.RequestID(c), c.RealIP(), file.Filename, target,
		result.Success, failureReason, result.Duration, map[string]any{
			"size":           file.Size,
			"entries":        len(result.ExtractedFiles),
			"matching_files": len(result.MatchingFiles),
			"error_kind":     result.ErrorKind,
		})

	return common.SendSuccess(c, NewInspectResponse(result))
}

func (h *Handler) saveUpload(file *multipart.FileHeader) (string, error) {
	fs := h.service.Fs()
	dir := h.service.ScratchDir()
	if dir == "" {
		dir = os.TempDir()
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("cannot open uploaded file: %w", err)
	}
	defer src.Close()

	path := filepath.Join(dir, uploadPrefix+uuid.New().String()+".zip")
	dst, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("cannot create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		h.removeUpload(path)
		return "", fmt.Errorf("cannot write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		h.removeUpload(path)
		return "", fmt.Errorf("cannot write upload file: %w", err)
	}

	return path, nil
}

func (h *Handler) removeUpload(path string) {
	if err := h.service.Fs().Remove(path); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("could not cleanup uploaded file",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}
