/*
Package ports defines the driven ports (interfaces) of patchbay.

These interfaces decouple the editor core and the backend host from external
implementations, allowing them to work with various transports and patch
storage backends.

# Key Interfaces

  - Transport: A duplex stream of text frames (websocket, in-memory pipe).
  - IntentSink: Where the graph store sends the intents of local mutations.
  - PatchStore: Responsible for persisting and loading saved patches.
  - DistributedLocker: Provides distributed locking for patches shared by replicas.
*/
package ports
