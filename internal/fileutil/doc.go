// Package fileutil provides path exclusion for directory traversal.
//
// Exclusion patterns use .gitignore syntax and are evaluated relative to the
// directory target a traversal started from. A Matcher is built once per
// directory target and is then shared read-only by every worker expanding
// directories beneath it.
//
// # Usage
//
//	m, err := fileutil.NewMatcher("src", []string{"*.min.js", "vendor/"}, true)
//	if err != nil {
//	    return err
//	}
//	if m.Match("src/vendor", true) {
//	    // skip the whole subtree
//	}
//
// Passing useGitignore=true additionally loads <root>/.gitignore when present.
// Nested .gitignore files below the root are not consulted.
//
// Explicit command-line targets are never matched against exclusion patterns;
// only entries discovered while listing directories are.
package fileutil
