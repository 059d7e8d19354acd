// Package logger builds the structured loggers used by the database.
//
// It wraps log/slog with JSON or text output and redacts attributes
// that carry key material, so encryption keys and passphrases never
// reach a log sink.
package logger
