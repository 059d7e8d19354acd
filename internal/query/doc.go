// Package query evaluates collection lookups: a MongoDB-style operator
// dialect for filtering, multi-key sort, skip/limit, and field
// projection. The pipeline order is filter, sort, skip, limit, project.
package query
