package archive

import (
	"archive/zip"
	"compress/flate"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// zipArchive keeps the backing file open for as long as the reader is used.
type zipArchive struct {
	*zip.Reader
	file afero.File
}

func (z *zipArchive) Close() error {
	return z.file.Close()
}

func openZip(fs afero.Fs, path string) (*zipArchive, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	reader, err := zip.NewReader(file, info.Size())
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && reader != nil) {
		file.Close()
		return nil, err
	}

	return &zipArchive{Reader: reader, file: file}, nil
}

func (i *Inspector) unpack(archive *zipArchive, dest string) error {
	extracted := 0
	for _, entry := range archive.File {
		path, err := ValidateExtractPath(dest, entry.Name)
		if err != nil {
			i.logger.Warn("skipping archive entry outside scratch directory",
				zap.String("entry", entry.Name),
				zap.String("scratch_dir", dest),
			)
			continue
		}

		if err := i.unpackEntry(entry, path); err != nil {
			return fmt.Errorf("entry %s: %w", entry.Name, err)
		}
		extracted++
	}

	i.logger.Debug("archive unpacked",
		zap.String("archive", i.archivePath),
		zap.String("scratch_dir", dest),
		zap.Int("entries", len(archive.File)),
		zap.Int("extracted", extracted),
	)
	return nil
}

func (i *Inspector) unpackEntry(entry *zip.File, path string) error {
	if entry.FileInfo().IsDir() {
		return i.fs.MkdirAll(path, 0755)
	}

	if err := i.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := i.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode().Perm()|0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// isCorruption reports whether err comes from the archive's own bytes
// rather than from the filesystem we are writing to.
func isCorruption(err error) bool {
	var corrupt flate.CorruptInputError
	return errors.Is(err, zip.ErrFormat) ||
		errors.Is(err, zip.ErrChecksum) ||
		errors.Is(err, zip.ErrAlgorithm) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &corrupt)
}
