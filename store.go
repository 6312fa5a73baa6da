package syncfile

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/brianhealey/syncfile/internal/debounce"
)

// Options configures a handle at creation time. The zero value is valid:
// synchronous saves, JSON on the real filesystem, no directory creation.
type Options struct {
	// Recursive creates the file's parent directory during bootstrap if it is
	// missing. Only the immediate parent is created; a chain missing two or
	// more levels still fails.
	Recursive bool

	// Save selects the timing policy. Fixed for the life of the handle.
	Save SaveMode

	// LazyDelay is the debounce delay for SaveLazy. Defaults to
	// DefaultLazyDelay when zero.
	LazyDelay time.Duration

	// Codec defines the on-disk representation. Defaults to JSONCodec.
	Codec Codec

	// FS overrides the filesystem, mainly for tests.
	FS FileSystem

	// OnSaveError is called with each failed background write. When nil,
	// SaveAsync and SaveLazy failures are discarded.
	OnSaveError func(error)

	// ReloadOnChange re-parses the file when another process writes it.
	// Reloads are skipped while this handle has a save pending or in flight.
	ReloadOnChange bool
}

// Map is a persisted string-keyed map. Every Set and Delete applies in memory
// first and then triggers the save policy chosen at creation; reads never
// touch the disk.
type Map struct {
	path  string
	codec Codec
	fs    FileSystem
	mode  SaveMode

	mu   sync.Mutex
	data map[string]any

	deb     *debounce.Debouncer
	writer  *asyncWriter
	bus     *saveBus
	watcher *fsnotify.Watcher
	onError func(error)
}

// New loads the file at path, or seeds it with defaults if it does not exist,
// and returns the handle. When the file is absent the handle takes ownership
// of the defaults map directly; callers must not keep mutating it.
//
// Bootstrap failures are fatal: a parse error on existing content is a
// *FormatError, any filesystem failure is an *IOError, and no handle is
// returned in either case.
func New(path string, defaults map[string]any, opts *Options) (*Map, error) {
	if path == "" {
		return nil, fmt.Errorf("syncfile: path is required")
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Save < SaveSync || o.Save > SaveLazy {
		return nil, fmt.Errorf("syncfile: invalid save mode %d", int(o.Save))
	}
	if o.LazyDelay < 0 {
		return nil, fmt.Errorf("syncfile: negative lazy delay %v", o.LazyDelay)
	}
	if o.LazyDelay == 0 {
		o.LazyDelay = DefaultLazyDelay
	}
	if o.Codec == nil {
		o.Codec = JSONCodec{}
	}
	if o.FS == nil {
		o.FS = OSFileSystem{}
	}
	if defaults == nil {
		defaults = make(map[string]any)
	}
	path = filepath.Clean(path)

	data, err := bootstrap(path, defaults, o.Recursive, o.Codec, o.FS)
	if err != nil {
		return nil, err
	}

	m := &Map{
		path:    path,
		codec:   o.Codec,
		fs:      o.FS,
		mode:    o.Save,
		data:    data,
		bus:     newSaveBus(),
		onError: o.OnSaveError,
	}
	m.writer = newAsyncWriter(o.FS, path, m.saveDone)
	if o.Save == SaveLazy {
		m.deb = debounce.New(o.LazyDelay, m.saveNow)
	}
	if o.ReloadOnChange {
		if err := m.startWatch(); err != nil {
			slog.Warn("syncfile: could not watch file", "path", path, "err", err)
		}
	}
	return m, nil
}

// bootstrap settles the on-disk and in-memory state exactly once, before the
// handle is handed out.
func bootstrap(path string, defaults map[string]any, recursive bool, codec Codec, fs FileSystem) (map[string]any, error) {
	if fs.Exists(path) {
		raw, err := fs.ReadFile(path)
		if err != nil {
			return nil, &IOError{Op: "read", Path: path, Err: err}
		}
		data, err := codec.Unmarshal(raw)
		if err != nil {
			return nil, &FormatError{Path: path, Err: err}
		}
		return data, nil
	}

	if recursive {
		if dir := filepath.Dir(path); !fs.Exists(dir) {
			if err := fs.Mkdir(dir); err != nil {
				return nil, &IOError{Op: "mkdir", Path: dir, Err: err}
			}
		}
	}
	out, err := codec.Marshal(defaults)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	if err := fs.WriteFile(path, out); err != nil {
		return nil, &IOError{Op: "write", Path: path, Err: err}
	}
	slog.Debug("syncfile: seeded new file", "path", path)
	return defaults, nil
}

// Path returns the file backing this handle.
func (m *Map) Path() string { return m.path }

// Mode returns the save policy bound at creation.
func (m *Map) Mode() SaveMode { return m.mode }

// Get retrieves a value by key.
func (m *Map) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Has reports whether key exists.
func (m *Map) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// Len returns the number of keys.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// Keys returns all keys in sorted order.
func (m *Map) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Range calls f for each key/value pair until f returns false.
func (m *Map) Range(f func(key string, value any) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.data {
		if !f(k, v) {
			break
		}
	}
}

// Snapshot returns a shallow copy of the current content.
func (m *Map) Snapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]any, len(m.data))
	for k, v := range m.data {
		cp[k] = v
	}
	return cp
}

// Set assigns value to key and triggers the save policy. Under SaveSync a
// write failure is returned here; the in-memory assignment is not rolled
// back, so after an error memory is authoritative and disk state is unknown.
func (m *Map) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return m.saveLocked()
}

// Delete removes key and triggers the save policy with the same error
// semantics as Set.
func (m *Map) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return m.saveLocked()
}

// saveLocked runs the bound strategy. The caller holds m.mu, so the payload
// always reflects the mutation that triggered it and no two mutations
// interleave their apply-then-trigger sequence.
func (m *Map) saveLocked() error {
	switch m.mode {
	case SaveSync:
		out, err := m.codec.Marshal(m.data)
		if err != nil {
			return &FormatError{Path: m.path, Err: err}
		}
		var werr error
		if err := m.fs.WriteFile(m.path, out); err != nil {
			werr = &IOError{Op: "write", Path: m.path, Err: err}
		}
		m.bus.publish(SaveEvent{Path: m.path, Err: werr})
		return werr
	case SaveAsync:
		m.enqueueLocked()
	case SaveLazy:
		m.deb.Trigger()
	}
	return nil
}

// enqueueLocked serializes the current content and hands it to the background
// writer. Serialization failures follow the background silencing policy.
func (m *Map) enqueueLocked() {
	out, err := m.codec.Marshal(m.data)
	if err != nil {
		go m.saveDone(&FormatError{Path: m.path, Err: err})
		return
	}
	m.writer.enqueue(out)
}

// saveNow is the debounce action: serialize whatever the content is at fire
// time and queue the write.
func (m *Map) saveNow() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueueLocked()
}

// saveDone runs after each background write completes.
func (m *Map) saveDone(err error) {
	m.bus.publish(SaveEvent{Path: m.path, Err: err})
	if err != nil && m.onError != nil {
		m.onError(err)
	}
}

// Subscribe registers for save outcomes. The returned id releases the
// subscription via Unsubscribe. Slow subscribers miss events rather than
// slowing saves down.
func (m *Map) Subscribe() (string, <-chan SaveEvent) {
	return m.bus.subscribe()
}

// Unsubscribe removes a subscription and closes its channel.
func (m *Map) Unsubscribe(id string) {
	m.bus.unsubscribe(id)
}

// Flush forces any pending lazy write out now and waits for the background
// writer to drain. It returns the error of the most recent background write.
// Under SaveSync there is never anything pending.
func (m *Map) Flush() error {
	if m.mode == SaveSync {
		return nil
	}
	if m.deb != nil && m.deb.Stop() {
		m.saveNow()
	}
	return m.writer.wait()
}

// Close stops the watcher, flushes pending writes, and closes all event
// subscriptions. The handle must not be used afterwards.
func (m *Map) Close() error {
	if m.watcher != nil {
		m.watcher.Close()
	}
	err := m.Flush()
	m.bus.closeAll()
	return err
}
