/*
Package graph implements the editor's graph store and subgraph duplication.

The Store owns every object of a patch and enforces its wiring invariants:
names are unique, each input slot holds at most one source, nothing feeds
itself and the engine is a pure sink. Every locally originated mutation is
validated first, then mirrored to the backend through a ports.IntentSink and
only then applied, so a rejected operation never transmits a partial intent.

Inbound changes are applied inside Quiet, which suppresses the outward
intents (re-emitting data the backend already has would create a feedback loop).

The Store is not safe for concurrent use: it belongs to one event-processing
context (see editor.Session).
*/
package graph
