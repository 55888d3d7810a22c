package source

import (
	"context"
	"fmt"
	"os"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
)

// FileLoader reads a JSON export from the local filesystem.
type FileLoader struct {
	path string
}

// NewFileLoader creates a FileLoader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) Name() string { return "file:" + l.path }

// Load reads and decodes the whole file. The envelope rules are those of
// normalize.DecodePayload.
func (l *FileLoader) Load(ctx context.Context) ([]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.path, err)
	}
	return normalize.DecodePayload(data)
}
