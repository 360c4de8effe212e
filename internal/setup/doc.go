// Package setup is the component activation subsystem. It tracks which
// components are active and brings inactive ones up on request:
//
//   - manager.go: Manager type, registration, simple getters.
//   - activate.go: Activate, per-component serialization, dependency fan-out.
//   - types.go: Component, SetupFunc, State and the Status projection.
//   - errors.go: registration errors.
//   - events.go: lifecycle EventPublisher seam and its in-memory recorder.
//
// Activation is idempotent. Concurrent requests for the same component share
// one in-flight attempt, so a component's setup must never wait for its own
// activation; that case is detected through the context and fails instead of
// hanging.
package setup
