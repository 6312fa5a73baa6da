package syncfile

import "fmt"

// IOError is a filesystem failure: read, write, or directory creation.
type IOError struct {
	Op   string // "read", "write", "mkdir"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("syncfile: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FormatError is a codec failure: the file's contents could not be parsed,
// or the content could not be serialized.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("syncfile: bad format in %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
