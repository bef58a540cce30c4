// Package field defines the canonical field-tree model the rest of the
// module compiles. A record type's content model is a recursive tree of
// Field values mixing leaf scalars, merge containers (row, collapsible,
// unnamed tabs) that organise siblings without introducing a namespace,
// namespace containers (named group, array, named tab) whose names become
// path segments, and blocks fields whose discriminated variant set is
// assembled from inline declarations and the global registry. Trees are
// built once from static configuration, sanitized upstream, and consumed
// read-only by the compiler and path-map builders on every process start.
package field
