// Package manifest parses adaptor manifests: HCL files found on the
// configured adaptor search paths that publish compiled modules under
// additional (category, scheme) claims.
//
//	adaptor "webdav" {
//	  module = "http"
//
//	  claim "file" "webdav" {
//	    target = "https"
//	    accept = "host != '' && query.readonly != 'true'"
//	  }
//	}
//
// The module attribute names a compiled module. Each claim delegates to the
// module's own claim for the same category and the target scheme (the claim
// scheme when target is omitted); the URL handed to the module has its scheme
// rewritten to target. An optional accept expression, written in expr-lang,
// is evaluated against the URL and turns a false result into a decline.
package manifest
