// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and integrates with the Fiber trigger server.
//
// # Correlation
//
// Two helpers attach correlation fields to log entries: WithRayID extracts
// the request ID from a Fiber context, and WithRunID tags entries with the
// reconciliation run they belong to, so a full batch can be traced across
// source lookups, staging, and flush.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Run started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
