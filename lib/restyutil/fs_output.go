package restyutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// MessageOutput receives rendered http exchanges, keyed by a per-client
// request id.
type MessageOutput interface {
	Write(id string, contents string)
}

type FilesystemOutput struct {
	directory string
	onError   func(id string, err error)
}

// NewFilesystemOutput writes one file per exchange into `dir`, dumps left
// over from a previous run (*.txt) are removed, anything else in `dir` is left
// alone. `onError` is called when a dump cannot be written, it may be nil.
func NewFilesystemOutput(dir string, onError func(id string, err error)) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, fmt.Errorf("create http dump dir: %w", err)
	}

	stale, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return FilesystemOutput{}, err
	}
	for _, path := range stale {
		err = os.Remove(path)
		if err != nil {
			return FilesystemOutput{}, fmt.Errorf("clear http dump dir: %w", err)
		}
	}

	return FilesystemOutput{directory: dir, onError: onError}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
	if err != nil && o.onError != nil {
		o.onError(id, err)
	}
}
