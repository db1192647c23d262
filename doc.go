/*
Package fasim is a finite automaton simulator for deterministic and nondeterministic machines.

A single set-based engine covers both kinds: a DFA is the case where every configuration
holds one state. Stepping is caller-driven, so the same fold powers whole-input
simulation, traced runs and interactive sessions.

# Concept

An automaton is a set of named states, one initial state, a set of accepting states and a
transition relation. The simulator carries a configuration (the set of active states)
through the input one symbol at a time. When no active state has a transition on the
next symbol the run is stuck and the input is rejected.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/fasim"
		"github.com/aretw0/fasim/pkg/format"
	)

	func main() {
		a, err := format.LoadFile("ends-with-ab.txt")
		if err != nil {
			log.Fatal(err)
		}

		eng := fasim.New()
		run, err := eng.Simulate(context.Background(), a, fasim.Symbols("aab"))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(run.Verdict)
	}

# Packages

  - pkg/domain: the automaton model, configurations, runs and sessions.
  - pkg/format: the five-section text format (#states, #initial, #accepting, #alphabet, #transitions).
  - pkg/graph: renderer-neutral node/edge description.
  - pkg/session: step-by-step simulations persisted across calls.
  - pkg/adapters: memory, file and Redis stores, plus HTTP and MCP servers.
*/
package fasim
