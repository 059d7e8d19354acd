// Package wal provides the write-ahead log for durability.
//
// The log is an append-only sequence of newline-terminated records, one
// operation per line. Writes go through a buffered writer and are not
// synced per operation; the flush policy decides when buffered bytes
// reach the file. Replay applies decodable lines in order and skips the
// rest, so a torn tail never blocks recovery.
package wal
