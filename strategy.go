package syncfile

import (
	"sync"
	"time"
)

// SaveMode selects when a mutation reaches the disk.
type SaveMode int

const (
	// SaveSync writes under the mutation; write errors surface to the caller.
	SaveSync SaveMode = iota

	// SaveAsync hands the serialized value to a background writer and returns
	// immediately. Write errors are silenced unless a hook is installed.
	SaveAsync

	// SaveLazy debounces bursts of mutations into one trailing write, which
	// then follows the SaveAsync path.
	SaveLazy
)

// DefaultLazyDelay is the debounce delay used when Options.LazyDelay is unset.
const DefaultLazyDelay = time.Second

// String returns the mode name for logging.
func (m SaveMode) String() string {
	switch m {
	case SaveSync:
		return "sync"
	case SaveAsync:
		return "async"
	case SaveLazy:
		return "lazy"
	default:
		return "unknown"
	}
}

// asyncWriter serializes all background writes for one path. It holds a single
// latest-wins pending slot drained by one goroutine, so overlapping saves can
// never land on disk out of order; a superseded payload is dropped without
// ever touching the file.
type asyncWriter struct {
	fs   FileSystem
	path string
	done func(error)

	mu      sync.Mutex
	cond    *sync.Cond
	pending []byte
	running bool
	lastErr error
}

func newAsyncWriter(fs FileSystem, path string, done func(error)) *asyncWriter {
	w := &asyncWriter{fs: fs, path: path, done: done}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// enqueue replaces any not-yet-started write with data and makes sure a drain
// goroutine is running.
func (w *asyncWriter) enqueue(data []byte) {
	w.mu.Lock()
	w.pending = data
	if !w.running {
		w.running = true
		go w.drain()
	}
	w.mu.Unlock()
}

func (w *asyncWriter) drain() {
	for {
		w.mu.Lock()
		data := w.pending
		w.pending = nil
		if data == nil {
			w.running = false
			w.cond.Broadcast()
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()

		var err error
		if werr := w.fs.WriteFile(w.path, data); werr != nil {
			err = &IOError{Op: "write", Path: w.path, Err: werr}
		}

		w.mu.Lock()
		w.lastErr = err
		w.mu.Unlock()

		w.done(err)
	}
}

// wait blocks until nothing is queued or in flight, then returns the error
// from the most recent write, if any.
func (w *asyncWriter) wait() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.running || w.pending != nil {
		w.cond.Wait()
	}
	return w.lastErr
}

// busy reports whether a write is queued or in flight.
func (w *asyncWriter) busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running || w.pending != nil
}
