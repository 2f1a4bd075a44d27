package upload

import (
	"path/filepath"

	"github.com/tech-arch1tect/archive-inspector/internal/archive"
)

type InspectResponse struct {
	Success        bool              `json:"success"`
	Message        string            `json:"message"`
	ExtractedFiles []string          `json:"extracted_files"`
	XMLFiles       []string          `json:"xml_files"`
	XMLTimestamps  map[string]string `json:"xml_timestamps"`
	XMLContent     *string           `json:"xml_content"`
	XMLFilename    *string           `json:"xml_filename"`
}

// NewInspectResponse flattens a Result for clients: matching files and
// timestamps are keyed by base name, scratch paths never leave the server.
func NewInspectResponse(result *archive.Result) *InspectResponse {
	resp := &InspectResponse{
		Success:        result.Success,
		Message:        result.Message,
		ExtractedFiles: result.ExtractedFiles,
		XMLFiles:       make([]string, 0, len(result.MatchingFiles)),
		XMLTimestamps:  make(map[string]string, len(result.Timestamps)),
		XMLContent:     result.Content,
	}
	if resp.ExtractedFiles == nil {
		resp.ExtractedFiles = []string{}
	}

	for _, path := range result.MatchingFiles {
		resp.XMLFiles = append(resp.XMLFiles, filepath.Base(path))
	}
	for path, ts := range result.Timestamps {
		resp.XMLTimestamps[filepath.Base(path)] = ts
	}

	// The UI shows the timestamp of xml_filename, so a name without one is
	// swapped for the first matching file when there is one.
	name := result.FileName
	if _, ok := resp.XMLTimestamps[name]; !ok && len(resp.XMLFiles) > 0 {
		name = resp.XMLFiles[0]
	}
	if name != "" {
		resp.XMLFilename = &name
	}

	return resp
}
