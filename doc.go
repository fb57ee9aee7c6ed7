/*
Package questline is a mission and dialog engine for story-driven games.

A storyline is a set of missions. Each mission is a chain of steps, and each step carries
a branching dialog attached to an NPC, to a map location, or to a queue that fires on the
next poll. Answers given in dialogs land in a key/value store; missions declare
dependencies on those keys and are activated as soon as they are satisfied.

# Architecture

The engine follows a hexagonal layout. The core (storyline parsing, the dialog iterator,
the coordinator and the activation daemon) only talks to ports: an answer backend for
persistence, a counter for remote statistics and a world that knows where characters
and locations are. Adapters provide memory, file and Redis backends, an HTTP API with
server-sent events, a WebSocket presence hub and a terminal runner.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/questline"
		"github.com/aretw0/questline/pkg/runner"
	)

	func main() {
		eng, err := questline.New("storyline.yaml")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		game, err := eng.NewGame(ctx, "local")
		if err != nil {
			log.Fatal(err)
		}
		defer game.Close()

		r := runner.NewRunner(runner.NewTextHandler(os.Stdin, os.Stdout))
		if err := r.Run(ctx, game); err != nil {
			log.Fatal(err)
		}
	}
*/
package questline
