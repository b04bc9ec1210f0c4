// Package core contains the process-wide accessibility coordinator and the
// contracts screens use to talk to it.
//
// Allowed here:
// - the Coordinator façade, Scope batch handles and the mounted screen stack
// - keyboard/switch key registries and default traversal bindings
// - the accessibility-aware theme derived from effective preferences
//
// Not allowed here:
// - concrete screen rendering (internal/tui)
// - storage, device probing, graph and voice internals (internal/...)
package core
