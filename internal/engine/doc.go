// Package engine binds capability requests to adaptors.
//
// Resolve takes a capability category and a URL, looks up the candidates the
// registry holds for the URL's scheme and calls their factories in
// registration order. The first factory that returns an instance wins. A
// factory that declines (see adaptor.Decline) is recorded and the next one is
// tried; any other factory error stops resolution and is returned wrapped in
// a BindError. When every candidate declines the result is
// ErrAllBackendsDeclined carrying each reason.
//
// The engine keeps no state between calls and adds no retries or timeouts:
// the context is handed to the factories as is.
package engine
