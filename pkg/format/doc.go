/*
Package format persists automata in a line-oriented text format.

A file has five sections, each introduced by a line that is exactly its marker:

	#states
	q0
	q1
	#initial
	q0
	#accepting
	q1
	#alphabet
	a
	#transitions
	q0:a>q1

Several lines sharing an origin:symbol prefix are the destinations of a nondeterministic
transition. The #alphabet section is informational: Load ignores it and derives the
alphabet from #transitions.
*/
package format
