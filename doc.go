// Package syncfile keeps an in-memory map and a single on-disk file in sync
// without explicit save calls.
//
// New loads or seeds the file once, then returns a Map whose Set and Delete
// persist the whole value under one of three timing policies: SaveSync writes
// under the mutation and surfaces write errors to it, SaveAsync hands the
// serialized value to a background writer and returns immediately, and
// SaveLazy debounces bursts of mutations into a single trailing write.
//
// One handle owns one file. There is no cross-handle or cross-process
// coordination and no file locking; concurrent handles over the same path may
// lose updates. Writes overwrite the file in place (no atomic rename), and a
// pending lazy write is lost if the process exits without Flush or Close.
package syncfile
