/*
Package session implements the keyed session map of the workflow engine.

The Manager serializes access to each actor's session with a ref-counted
in-process mutex (optionally backed by a distributed lock) and can expire
abandoned sessions after a configurable idle time.
*/
package session
