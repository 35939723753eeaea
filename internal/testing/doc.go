// Package testing provides test utilities, builders, and fixtures for unit and integration tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ConfigBuilder: Fluent builder for creating test configurations
//   - World: an in-memory docker and kind host behind a shell.FakeExecutor and a docker API
//   - RecordingObserver: captures provisioning events
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithClusterName("test").
//	    WithGroup("pre", "echo a").
//	    Build()
//
//	world := testing.NewWorld()
//	world.AddCluster("test")
//	networks := docker.NewClient(world.Docker())
package testing
