package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/tech-arch1tect/archive-inspector/internal/logging"
)

var errStopWalk = errors.New("stop walk")

// Inspector extracts one zip archive into scratch storage and reads the
// documents it contains. An Inspector serves a single request and is not
// safe for concurrent use.
type Inspector struct {
	fs          afero.Fs
	logger      *logging.Logger
	archivePath string
	extractTo   string
	scratchDir  string
	extension   string

	extractDir string
	ownsDir    bool
}

func NewInspector(archivePath string, opts Options) *Inspector {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	return &Inspector{
		fs:          fs,
		logger:      logger.With(zap.String("archive", filepath.Base(archivePath))),
		archivePath: archivePath,
		extractTo:   opts.ExtractTo,
		scratchDir:  opts.ScratchDir,
		extension:   strings.ToLower(ext),
	}
}

// ExtractDir returns the directory holding extracted entries, or an empty
// string before extraction.
func (i *Inspector) ExtractDir() string {
	return i.extractDir
}

// ValidateArchive checks that path exists and is structurally a zip archive.
func ValidateArchive(fs afero.Fs, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return fail(ErrArchiveNotFound, fmt.Sprintf("Zip file '%s' not found.", path))
	}

	archive, err := openZip(fs, path)
	if err != nil {
		return fail(ErrInvalidArchive, fmt.Sprintf("'%s' is not a valid zip file.", path))
	}
	archive.Close()

	return nil
}

func (i *Inspector) Validate() (bool, string) {
	if err := ValidateArchive(i.fs, i.archivePath); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Extract unpacks every entry into a fresh scratch directory and returns the
// entry names in archive order.
func (i *Inspector) Extract() (bool, string, []string) {
	files, err := i.extract()
	if err != nil {
		return false, err.Error(), []string{}
	}
	return true, fmt.Sprintf("Files extracted to: '%s'", i.extractDir), files
}

func (i *Inspector) extract() ([]string, error) {
	if err := ValidateArchive(i.fs, i.archivePath); err != nil {
		i.logger.Warn("archive rejected", zap.Error(err))
		return nil, err
	}

	i.Cleanup()

	if err := i.prepareExtractDir(); err != nil {
		i.logger.Error("failed to create scratch directory", zap.Error(err))
		return nil, fail(ErrExtraction, fmt.Sprintf("Error extracting zip file: %v", err))
	}

	archive, err := openZip(i.fs, i.archivePath)
	if err != nil {
		return nil, fail(ErrCorruptArchive, "Invalid or corrupted zip file.")
	}
	defer archive.Close()

	if err := i.unpack(archive, i.extractDir); err != nil {
		i.logger.Error("failed to extract archive",
			zap.String("scratch_dir", i.extractDir),
			zap.Error(err),
		)
		if isCorruption(err) {
			return nil, fail(ErrCorruptArchive, "Invalid or corrupted zip file.")
		}
		return nil, fail(ErrExtraction, fmt.Sprintf("Error extracting zip file: %v", err))
	}

	names := make([]string, 0, len(archive.File))
	for _, entry := range archive.File {
		names = append(names, entry.Name)
	}

	i.logger.Info("archive extracted",
		zap.String("scratch_dir", i.extractDir),
		zap.Int("entries", len(names)),
	)
	return names, nil
}

func (i *Inspector) prepareExtractDir() error {
	if i.extractTo != "" {
		if err := i.fs.MkdirAll(i.extractTo, 0755); err != nil {
			return err
		}
		i.extractDir = i.extractTo
		i.ownsDir = false
		return nil
	}

	if i.scratchDir != "" {
		if err := i.fs.MkdirAll(i.scratchDir, 0755); err != nil {
			return err
		}
	}

	dir, err := afero.TempDir(i.fs, i.scratchDir, ScratchPrefix)
	if err != nil {
		return err
	}
	i.extractDir = dir
	i.ownsDir = true
	return nil
}

// FindMatchingFiles walks the scratch directory in lexical order and returns
// every regular file whose name ends with the target extension, ignoring case.
func (i *Inspector) FindMatchingFiles() []string {
	files := []string{}
	if i.extractDir == "" {
		return files
	}
	if exists, _ := afero.DirExists(i.fs, i.extractDir); !exists {
		return files
	}

	err := afero.Walk(i.fs, i.extractDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			i.logger.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(info.Name()), i.extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		i.logger.Warn("failed to walk scratch directory", zap.Error(err))
	}

	return files
}

// ReadFile resolves name against the extracted tree and returns its text.
// Resolution tries name as a path relative to the scratch root, then the
// first walked file whose base name equals name or ends with it, so
// "report.xml" also matches "old_report.xml".
func (i *Inspector) ReadFile(name string) (bool, string, *string, string) {
	content, resolved, err := i.readFile(name)
	if err != nil {
		return false, err.Error(), nil, ""
	}
	return true, fmt.Sprintf("Successfully read '%s'", name), &content, resolved
}

func (i *Inspector) readFile(name string) (string, string, error) {
	if i.extractDir == "" {
		return "", "", fail(ErrNotExtracted, "No extraction folder. Please extract zip file first.")
	}

	target := i.resolve(name)
	if target == "" {
		i.logger.Debug("requested file not found", zap.String("requested", name))
		return "", "", fail(ErrFileNotFound, fmt.Sprintf("File '%s' not found in extracted folder.", name))
	}

	content, err := readText(i.fs, target)
	if err != nil {
		i.logger.Warn("failed to read extracted file",
			zap.String("path", target),
			zap.Error(err),
		)
		return "", "", fail(ErrRead, fmt.Sprintf("Error reading file: %v", err))
	}

	return content, filepath.Base(target), nil
}

func (i *Inspector) resolve(name string) string {
	direct := filepath.Join(i.extractDir, name)
	if WithinRoot(i.extractDir, direct) {
		if info, err := i.fs.Stat(direct); err == nil && info.Mode().IsRegular() {
			return direct
		}
	}

	var found string
	_ = afero.Walk(i.fs, i.extractDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if info.Name() == name || strings.HasSuffix(info.Name(), name) {
			found = path
			return errStopWalk
		}
		return nil
	})

	return found
}

// Run extracts the archive, indexes matching documents and reads target, or
// the first matching document when target is empty. Failures are reported in
// the Result; partial listings gathered before a failed read are kept.
func (i *Inspector) Run(target string) (result *Result) {
	start := time.Now()
	result = newResult()
	result.FileName = target

	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("inspection panicked", zap.Any("panic", r))
			result.Success = false
			result.appendMessage(fmt.Sprintf("Unexpected error: %v", r))
		}
		result.Duration = time.Since(start)
	}()

	names, err := i.extract()
	if err != nil {
		result.Message = err.Error()
		result.ErrorKind = Kind(err)
		return result
	}

	result.ExtractedFiles = names
	result.ExtractDir = i.extractDir
	result.Message = fmt.Sprintf("Files extracted to: '%s'", i.extractDir)
	result.MatchingFiles = i.FindMatchingFiles()
	result.Timestamps = i.RecoverTimestamps(result.MatchingFiles)

	name := target
	if name == "" {
		if len(result.MatchingFiles) == 0 {
			result.Success = true
			return result
		}
		name = filepath.Base(result.MatchingFiles[0])
	}
	result.FileName = name

	content, resolved, err := i.readFile(name)
	if err != nil {
		result.appendMessage(err.Error())
		result.ErrorKind = Kind(err)
		return result
	}

	result.Content = &content
	result.FileName = resolved
	result.Success = true
	return result
}

// Cleanup removes a scratch directory created by Extract. Caller-supplied
// directories are left in place. Safe to call more than once.
func (i *Inspector) Cleanup() {
	if i.extractDir == "" || !i.ownsDir {
		return
	}

	exists, err := afero.DirExists(i.fs, i.extractDir)
	if err == nil && !exists {
		return
	}

	if err := i.fs.RemoveAll(i.extractDir); err != nil {
		i.logger.Warn("could not cleanup scratch directory",
			zap.String("scratch_dir", i.extractDir),
			zap.Error(err),
		)
		return
	}

	i.logger.Debug("scratch directory removed", zap.String("scratch_dir", i.extractDir))
}
