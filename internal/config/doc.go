// Package config loads database configuration for embedding hosts.
//
// Sources are merged with Koanf in priority order: defaults, then a
// YAML file, then JSONDB_-prefixed environment variables. A watcher
// built on fsnotify re-reads the file on change so runtime-tunable
// settings (the WAL flush policy) can be applied without a restart.
package config
