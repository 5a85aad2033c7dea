// Package domain holds the core types and contracts shared by all layers:
// quiz entities, analysis results, the capability interfaces consumed by the
// analysis pipeline, and the persistence interfaces. It depends on no other
// internal package.
package domain
