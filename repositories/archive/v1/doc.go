// Package v1 provides a read-only page repository backed by an append-only
// page archive.
//
// An archive is a single file of newline-delimited JSON records. Every
// record stores one version of one page, or marks a page as deleted.
// Records are never rewritten; when a path occurs more than once the last
// record in the file wins. Page content is Zstd-compressed and
// Ascii85-encoded so that a record always stays on a single line.
//
// Records are addressed by the XXH3 hash of their path. Opening an archive
// scans it once and keeps only the byte offsets of the newest record per
// path in memory; page bodies are read from disk on demand.
package v1
