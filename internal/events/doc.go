// Package events provides types and interfaces for decoupled completion
// notifications.
//
// This package defines event types and handler interfaces that allow for
// loose coupling between components in the system. The thumbnail service can
// announce freshly decoded artifacts without knowing which handlers will
// process them, keeping progress reporting and other side effects out of the
// decode path.
//
// The primary components are:
// - ArtifactEvent: Announces an artifact that finished decoding and was cached
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
