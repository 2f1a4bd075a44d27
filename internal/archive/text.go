package archive

import (
	"io"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// readText returns the file's bytes unchanged, failing on the first byte
// sequence that is not valid UTF-8.
func readText(fs afero.Fs, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(transform.NewReader(file, encoding.UTF8Validator))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
