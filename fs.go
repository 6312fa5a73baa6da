package syncfile

import "os"

// FileSystem is the narrow filesystem surface the store needs. The default is
// the real filesystem; tests substitute an in-memory one.
type FileSystem interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	// Mkdir creates a single directory level. It does not create parents.
	Mkdir(path string) error
}

// OSFileSystem is the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFileSystem) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func (OSFileSystem) Mkdir(path string) error {
	return os.Mkdir(path, 0755)
}

var _ FileSystem = OSFileSystem{}
