// Package v1 contains the configuration file format of union page
// repositories.
//
// A configuration names a set of unions. Every union lists its backing
// repositories in lookup order, each given as a typed specification that a
// provider turns into a repository:
//
//	type: unions.config.semanticcms.com/v1
//	unions:
//	  - name: docs
//	    mode: direct-probe
//	    repositories:
//	      - type: filesystem/v1
//	        root: ./pages
//	      - type: sqlite/v1
//	        dsn: file:pages.db?mode=ro
//	        include: ["/docs/**"]
//
// Documents are validated against an embedded JSON schema before they are
// decoded.
package v1
