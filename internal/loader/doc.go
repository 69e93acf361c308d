// Package loader discovers adaptors and files their claims into the
// registry.
//
// The search path list always starts with BuiltinPath, which stands for the
// modules compiled into the binary, followed by the configured adaptor paths
// in order. On those directories every file matching manifest.FilePattern is
// an entry. Each entry is loaded in isolation: a module that fails to declare
// its claims, or a manifest that does not parse or points at an unknown
// module, is logged at error level and skipped without affecting the entries
// after it.
//
// Claims receive a strictly increasing registration order in discovery
// order, which is what the resolution engine later uses to rank candidates.
// Discovery runs once; it freezes the registry when it is done.
package loader
