package validation

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrMissingFilename = errors.New("no file selected")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrInvalidTarget   = errors.New("invalid target name")
)

var AllowedUploadExtensions = []string{"zip"}

// ValidateUploadFilename accepts names whose final extension is one of
// AllowedUploadExtensions, ignoring case.
func ValidateUploadFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrMissingFilename
	}

	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ErrInvalidFileType
	}

	ext := strings.ToLower(name[idx+1:])
	for _, allowed := range AllowedUploadExtensions {
		if ext == allowed {
			return nil
		}
	}
	return ErrInvalidFileType
}

// NormalizeTargetName trims the requested member name. An empty result
// means no target was requested.
func NormalizeTargetName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	if strings.ContainsRune(name, 0) || len(name) > 1024 {
		return "", ErrInvalidTarget
	}

	if filepath.IsAbs(name) {
		return "", ErrInvalidTarget
	}

	return name, nil
}
