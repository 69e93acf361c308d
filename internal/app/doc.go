// Package app wires the runtime together: logger, configuration store,
// adaptor discovery and the resolution engine. New builds isolated
// instances; Instance returns the one shared by the process.
package app
