// Package ports defines the interfaces between the execution engine and the
// outside world: the telephony backend, persistence stores, and the clock.
//
// The engine depends only on these interfaces (hexagonal architecture);
// concrete implementations live under internal/adapters.
package ports
