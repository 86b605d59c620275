// Package events provides types and interfaces for an event-driven architecture.
//
// This package defines event types and handler interfaces that allow for loose coupling
// between components in the system. The scheduler can emit job status changes without
// knowing which handlers will process them, enabling better separation of concerns and
// reducing circular dependencies.
//
// The primary components are:
// - JobStatusEvent: Represents a job status change within a run
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
