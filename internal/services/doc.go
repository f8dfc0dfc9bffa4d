// Package services implements the business logic layer of the ITA reporting
// application. It provides a clean separation between HTTP handlers and data
// access, ensuring that business rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Error handling and transformation
//
// # Services
//
// ITAService loads the five input tables (main sheet, the three support
// service sheets and the form responses), runs the scoring pipeline, and
// hands the final table to the transport or exporter layers. HealthService
// reports process and input readiness for monitoring.
package services
