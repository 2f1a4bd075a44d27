package archive

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/tech-arch1tect/archive-inspector/config"
	"github.com/tech-arch1tect/archive-inspector/internal/logging"
)

// Service builds one Inspector per request and guarantees its scratch
// directory is released.
type Service struct {
	fs         afero.Fs
	scratchDir string
	extension  string
	logger     *logging.Logger
}

func NewService(cfg *config.Config, logger *logging.Logger) *Service {
	return NewServiceWithFs(afero.NewOsFs(), cfg, logger)
}

func NewServiceWithFs(fs afero.Fs, cfg *config.Config, logger *logging.Logger) *Service {
	return &Service{
		fs:         fs,
		scratchDir: cfg.ScratchDir,
		extension:  cfg.TargetExtension,
		logger:     logger.With(zap.String("service", "archive")),
	}
}

func (s *Service) NewInspector(archivePath string) *Inspector {
	return NewInspector(archivePath, Options{
		ScratchDir: s.scratchDir,
		Extension:  s.extension,
		Fs:         s.fs,
		Logger:     s.logger,
	})
}

// Inspect runs the full workflow against archivePath. An empty target reads
// the first matching document.
func (s *Service) Inspect(archivePath, target string) *Result {
	inspector := s.NewInspector(archivePath)
	defer inspector.Cleanup()

	result := inspector.Run(target)

	s.logger.Info("archive inspected",
		zap.String("archive", archivePath),
		zap.String("target", target),
		zap.Bool("success", result.Success),
		zap.String("error_kind", result.ErrorKind),
		zap.Int("entries", len(result.ExtractedFiles)),
		zap.Int("matching", len(result.MatchingFiles)),
		zap.String("file_name", result.FileName),
		zap.Duration("duration", result.Duration),
	)

	return result
}

func (s *Service) Fs() afero.Fs {
	return s.fs
}

func (s *Service) ScratchDir() string {
	return s.scratchDir
}

// EnsureScratchDir creates the configured scratch directory if needed.
func (s *Service) EnsureScratchDir() error {
	if s.scratchDir == "" {
		return nil
	}
	return s.fs.MkdirAll(s.scratchDir, 0755)
}
