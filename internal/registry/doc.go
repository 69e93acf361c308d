// Package registry is the index of installed adaptors.
//
// Descriptors are filed hierarchically by capability category and then by URL
// scheme:
//
//	job  → ssh   → [ssh job adaptor]
//	     → http  → [aws job adaptor, occi job adaptor]
//	file → https → [s3 file adaptor, http file adaptor]
//
// Within one (category, scheme) bucket descriptors are kept in registration
// order, which is the order the resolution engine tries them in. The
// registry is filled during discovery and then frozen; after that it only
// serves lookups.
package registry
