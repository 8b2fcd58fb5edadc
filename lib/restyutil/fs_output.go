package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemOutput writes every captured http message into its own file in a directory.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput clears out and recreates `dir`.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(id) + ".txt"
	err := os.WriteFile(filepath.Join(o.directory, name), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
