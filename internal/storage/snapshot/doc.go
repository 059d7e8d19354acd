// Package snapshot persists the whole document tree to a single file.
//
// Writes go to <file>.tmp and are renamed into place, so a reader never
// observes a half-written snapshot. A leftover .tmp at read time means
// the process died between write and rename; it is renamed over the
// main file and used as the snapshot.
package snapshot
