// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between the run scheduler and the page
// compositor to fulfill application features.
//
// The service package implements the application layer in the clean architecture,
// containing use cases that coordinate the flow of data between external interfaces
// (the HTTP API) and the domain layer. It abstracts away infrastructure details
// while orchestrating domain entities to fulfill business requirements.
//
// Key components:
//
// 1. Service Interfaces:
//   - Define application-specific operations available to the delivery mechanisms
//   - RunService covers the full run lifecycle from upload to composed page
//
// 2. Use Case Implementations:
//   - Coordinate between the scheduler and the compositor
//   - Enforce application-level rules such as the readiness gate before composition
//
// 3. Dependency Management:
//   - Services receive dependencies through constructor injection
//   - Core dependencies include the scheduler, the compositor, and cross-cutting concerns
//
// 4. Error Handling:
//   - Translate scheduler-specific errors to application-level errors
//   - Provide meaningful error context for API responses
//
// The service layer depends on domain entities and narrow consumer interfaces,
// but never on specific infrastructure implementations, maintaining the Dependency
// Inversion Principle of clean architecture.
package service
