/*
Package ports defines the driven ports (interfaces) for the fasim engine.

These interfaces decouple the simulation core from external implementations, allowing
automata and sessions to live in memory, on disk or in Redis.

# Key Interfaces

  - AutomatonStore: persists named automata.
  - SessionStore: persists step-by-step simulation sessions.
  - Simulator: the stepping surface used by the session manager.
  - DistributedLocker: provides distributed locking for concurrent session access.
*/
package ports
