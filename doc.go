/*
Package patchbay is the editor core of a modular signal-processing patch: objects of registered kinds, wired output-to-input into a graph that ends at a single engine object, kept in step with an audio backend over a message channel.

The editor owns an optimistic local copy of the patch. Every local edit is applied immediately and sent to the backend as an intent; messages coming back from the backend (the initial greeting, whole-patch replacements, confirmations and transient notices) are applied without being echoed.

# Concept

A patch is a set of named objects. Each object has a kind, which fixes its ordered input slots; each slot is fed by at most one other object. The engine object is created once per session from the greeting, can feed nothing and can never be destroyed or duplicated. Object names are allocated per kind ("osc1", "osc2") and are never reused.

# Layout

  - pkg/editor: one editing session (commands, inbound dispatch, notices).
  - pkg/graph: the patch store and the duplication engine.
  - pkg/channel: the ordered, fire-and-forget message channel.
  - pkg/persistence: the load/save bridge and the unsaved-changes flag.
  - pkg/backend: the authoritative host a server runs for each editor.
  - pkg/adapters: websocket, HTTP, redis and in-memory adapters.

# Usage

Connect dials a backend and returns once the kinds have been announced.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/patchbay"
		"github.com/aretw0/patchbay/pkg/domain"
	)

	func main() {
		ed, err := patchbay.Connect(context.Background(), "ws://localhost:8080/socket")
		if err != nil {
			log.Fatal(err)
		}
		defer ed.Close()

		osc, err := ed.Create("sin", domain.Display{Top: 40, Left: 40})
		if err != nil {
			log.Fatal(err)
		}
		if err := ed.Connect(osc.Name, domain.EngineName, "root"); err != nil {
			log.Fatal(err)
		}
		if err := ed.Save("first"); err != nil {
			log.Fatal(err)
		}
	}
*/
package patchbay
