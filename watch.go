package syncfile

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// startWatch watches the file's directory so edits by external tools are
// picked up. Watching the directory rather than the file survives
// delete-and-recreate editors.
func (m *Map) startWatch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(m.path)); err != nil {
		w.Close()
		return err
	}
	m.watcher = w
	go m.watchLoop()
	return nil
}

func (m *Map) watchLoop() {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Name != m.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				m.reload()
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("syncfile: watch error", "path", m.path, "err", err)
		}
	}
}

// reload re-parses the file after an external change. It is skipped while a
// save is pending or in flight: disk may be behind memory then, and the event
// may belong to this handle's own superseded write. An event caused by our
// own settled write reloads identical content, which is harmless.
func (m *Map) reload() {
	if m.saving() {
		return
	}
	raw, err := m.fs.ReadFile(m.path)
	if err != nil {
		slog.Warn("syncfile: reload failed", "path", m.path, "err", err)
		return
	}
	data, err := m.codec.Unmarshal(raw)
	if err != nil {
		slog.Warn("syncfile: reload failed", "path", m.path, "err", err)
		return
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	slog.Debug("syncfile: reloaded after external change", "path", m.path, "keys", len(data))
}

func (m *Map) saving() bool {
	if m.deb != nil && m.deb.Pending() {
		return true
	}
	return m.writer.busy()
}
