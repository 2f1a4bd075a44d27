package archive

import "errors"

var (
	ErrArchiveNotFound = errors.New("archive not found")
	ErrInvalidArchive  = errors.New("invalid archive")
	ErrCorruptArchive  = errors.New("corrupt archive")
	ErrExtraction      = errors.New("extraction failed")
	ErrNotExtracted    = errors.New("archive not extracted")
	ErrFileNotFound    = errors.New("file not found")
	ErrRead            = errors.New("read failed")
)

// Kind returns a stable identifier for the sentinel wrapped by err, or an
// empty string when err is nil or unclassified.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrArchiveNotFound):
		return "archive_not_found"
	case errors.Is(err, ErrInvalidArchive):
		return "invalid_archive"
	case errors.Is(err, ErrCorruptArchive):
		return "corrupt_archive"
	case errors.Is(err, ErrExtraction):
		return "extraction_error"
	case errors.Is(err, ErrNotExtracted):
		return "not_extracted"
	case errors.Is(err, ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, ErrRead):
		return "read_error"
	default:
		return ""
	}
}

// failure carries the user-facing message alongside the sentinel kind.
type failure struct {
	kind error
	msg  string
}

func (f *failure) Error() string { return f.msg }

func (f *failure) Unwrap() error { return f.kind }

func fail(kind error, msg string) error {
	return &failure{kind: kind, msg: msg}
}
