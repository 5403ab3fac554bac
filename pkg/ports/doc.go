/*
Package ports defines the driven ports (interfaces) of the adbot engine.

These interfaces decouple the turn dispatcher and the dialog engine from
external implementations: storage backends for conversation/user state,
the language-understanding service, and distributed locking for
multi-replica deployments.
*/
package ports
