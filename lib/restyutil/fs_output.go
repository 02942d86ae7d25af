package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

// MemoryOutput keeps the messages in memory.
type MemoryOutput struct {
	mutex    sync.Mutex
	Messages map[string]string
}

func (o *MemoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.Messages == nil {
		o.Messages = map[string]string{}
	}
	o.Messages[id] = contents
}

func (o *MemoryOutput) Get(id string) string {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.Messages[id]
}
