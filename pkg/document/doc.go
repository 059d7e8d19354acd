// Package document provides the JSON value model for the database.
//
// A Value is a tagged sum over the six JSON kinds. Objects preserve key
// insertion order, which keeps WAL replay and projection deterministic.
// The package also implements dotted-path navigation: Get, Set with
// container auto-creation, and Delete.
package document
