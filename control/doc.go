// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, logging, metrics and debug introspection for stream
// deployments.
//
// Provides:
//   - Typed YAML configuration with environment overrides and validation
//   - A ConfigStore with reload listeners
//   - zap logger construction with a runtime-adjustable level
//   - Prometheus collectors implementing stream.Observer
//   - Named debug probes for streams, allocators and the platform
package control
