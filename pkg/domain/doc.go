/*
Package domain contains the core domain models of a patchbay patch.

It defines the fundamental entities of the editor graph, such as Kinds, Objects
and Connections, together with the sentinel errors and the change hooks used to
notify presentation layers. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Kind: A named category of object with a fixed, ordered set of input slots.
  - Object: A node of the patch (name, kind, value, display and inputs).
  - Connection: A derived edge (From -> To.Input); each input holds at most one source.
  - Hooks: Callbacks fired after every applied change, local or inbound.
*/
package domain
