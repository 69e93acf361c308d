// Package adaptor defines the contract between the runtime and the backends
// it binds to.
//
// A backend is packaged as a Module. A Module declares a static list of
// Claims, each saying "I implement this capability category for URLs of this
// scheme" and naming the Factory that builds a bound instance. A Factory has
// three outcomes:
//
//   - a non-nil instance: the backend is bound and resolution stops;
//   - an error built with Decline: the backend recognises the call but cannot
//     handle this URL, and the next candidate is tried;
//   - any other error: an operational failure that stops resolution.
package adaptor
