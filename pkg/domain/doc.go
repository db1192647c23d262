/*
Package domain contains the core model of the fasim engine.

It defines the automaton (an arena of states interned to integer handles plus a
transition relation keyed by origin and symbol), the configurations a simulation moves
through, and the results and sessions built on top of them. This package is kept pure
and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Automaton: states, an optional initial state, the final subset and the transitions.
    Every mutator validates first and changes nothing on failure.
  - Configuration: an immutable set of active states.
  - Run / StepResult / TraceRecord: simulation outcomes. Stuck and Rejected are values,
    not errors.
  - Session: a persisted cursor for caller-driven, step-by-step playback.
*/
package domain
