// Package session implements live session orchestration: the per-session
// state machine, the background batching worker that feeds answers through
// preprocessing, and the registry that owns session lifecycle and fan-out
// to connected clients.
package session
