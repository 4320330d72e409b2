/*
Package backend is the authoritative side of the protocol.

A Host owns the graph of one connection: it greets the editor with the kind
catalog, applies the intents it receives, cascades deletions as explicit
disconnects, and serves load and save from a patch library. Any failure is
reported back to the editor as a "message".

A Hub accepts connections, gives each one an id and a Host, and keeps
prometheus metrics about them.
*/
package backend
