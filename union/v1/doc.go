// Package v1 implements union page repositories: composites that present an
// ordered list of backing [pages.Repository] implementations as a single
// repository.
//
// Lookups probe the backing repositories in their configured order and the
// first match wins. Pages that exist in several backing repositories are
// never merged; later repositories are simply not consulted.
//
// Two lookup contracts are available, see [LookupMode]. [LookupModeDirectProbe]
// is the default and treats a missing page as a normal result.
// [LookupModeExistenceGated] asks every repository for existence before
// fetching and reports a missing page as a [*pages.PageNotFoundError]. Use it
// only for stores whose existence check and fetch are not interchangeable.
//
// Union repositories are handed out by a [Registry], which guarantees that
// at most one [UnionRepository] exists per distinct ordered list of backing
// repositories, so unions can be compared, cached and reused by reference.
// [ScopedRegistry] offers the same guarantee for unions that are mounted at
// a path inside an externally managed scope.
package v1
