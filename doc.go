/*
Package movi is a conversational operations assistant for transit fleets.

It turns free-form operator input (text, voice notes, screenshots) into a
closed vocabulary of fleet operations: querying trips and routes, assigning
vehicles, creating stops and paths, and removing deployments. Destructive
operations are gated behind an impact analysis and an explicit human
confirmation before anything is executed.

# Architecture

A turn flows through a fixed pipeline: normalize the input into a common
reading, classify it against the operation vocabulary, evaluate the
consequences of risky operations, suspend for confirmation when the risk
is high, execute with bounded retry, and phrase the outcome. Sessions
persist between requests, so a confirmation can arrive on a later, fully
independent network request.

# Usage

The App ties the pieces together from one configuration:

	package main

	import (
		"context"
		"log"
		"net/http"

		"github.com/moviops/movi"
		"github.com/moviops/movi/internal/config"
	)

	func main() {
		cfg, err := config.Load("movi.yaml")
		if err != nil {
			log.Fatal(err)
		}

		app, err := movi.New(context.Background(), cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer app.Close()

		log.Fatal(http.ListenAndServe(cfg.Server.Addr, app.Handler()))
	}

For library use the pieces compose individually: an operations.Registry
over a fleet store, a session.Manager over any ports.SessionStore, and an
agent.Pipeline over both.
*/
package movi
