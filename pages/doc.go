// Package pages provides the technology-agnostic contract for page repositories.
//
// A page repository is any store that can answer three questions about a
// [Path]: is the store reachable at all, does a page exist at that path, and
// what does the page look like at a given [CaptureLevel].
//
// By programming against [Repository], consumers can combine file system
// trees, embedded resources, databases and message-broker key-value buckets
// without changing their lookup logic. Composite repositories (see the union
// package) implement the same interface, so they nest.
//
// Key features:
//   - Defines the core [Repository] interface and the optional
//     [ExistenceChecker] and [HealthCheckable] capabilities.
//   - Defines the validated [Path] value type used as lookup key.
//   - Defines [ErrNotFound], the technology-agnostic not-found sentinel that
//     implementations join with their own errors when they report absence as
//     an error rather than as a value.
package pages
