package archive

import (
	"time"

	"github.com/spf13/afero"

	"github.com/tech-arch1tect/archive-inspector/internal/logging"
)

const (
	DefaultExtension = ".xml"
	ScratchPrefix    = "xmlvalidator_"
	TimestampLayout  = "2006-01-02 15:04:05"
	UnknownTimestamp = "Unknown"
)

// Options configures a single Inspector. Zero values fall back to the OS
// filesystem, the system temp dir and DefaultExtension.
type Options struct {
	// ExtractTo is a caller-owned extraction directory. It is created when
	// missing and is never removed by Cleanup.
	ExtractTo string
	// ScratchDir is the parent for generated scratch directories.
	ScratchDir string
	Extension  string
	Fs         afero.Fs
	Logger     *logging.Logger
}

// Timestamps maps an extracted file path to its display timestamp.
type Timestamps map[string]string

type Result struct {
	Success        bool          `json:"success" yaml:"success"`
	Message        string        `json:"message" yaml:"message"`
	ErrorKind      string        `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	ExtractedFiles []string      `json:"extracted_files" yaml:"extracted_files"`
	MatchingFiles  []string      `json:"matching_files" yaml:"matching_files"`
	Timestamps     Timestamps    `json:"timestamps" yaml:"timestamps"`
	Content        *string       `json:"content" yaml:"content"`
	FileName       string        `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	ExtractDir     string        `json:"-" yaml:"-"`
	Duration       time.Duration `json:"-" yaml:"-"`
}

func newResult() *Result {
	return &Result{
		ExtractedFiles: []string{},
		MatchingFiles:  []string{},
		Timestamps:     Timestamps{},
	}
}

func (r *Result) appendMessage(msg string) {
	if r.Message == "" {
		r.Message = msg
		return
	}
	r.Message += " | " + msg
}
