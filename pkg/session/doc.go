/*
Package session implements per-conversation turn serialization and
state persistence orchestration.

It provides high-level abstractions for handling concurrent access to
conversation and user state across multiple replicas, integrating local
reference-counted locks with optional distributed locking and the
long-term storage adapters.
*/
package session
