/*
Package session implements caller-driven simulation sessions.

A session is a cursor over a stored automaton: each Step consumes one symbol and
persists the new configuration, so a run can be advanced across requests, processes
and replicas. Access to a session is serialized with in-process locks and, when a
DistributedLocker is configured, a lock shared by every replica.
*/
package session
