// Package editor is the client side of a patch: one Session per connection to
// a backend. It owns the kind registry, the name allocator and the graph,
// turns local commands into intents, and reconciles the graph with what the
// backend pushes back.
//
// Commands and inbound messages are serialized: each one runs to completion
// before the next is considered. Hooks are invoked from inside that context
// and must not call back into the Session.
package editor
