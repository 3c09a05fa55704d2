// Package utils provides common utility functions for the atm-reconciler
// application. It includes helpers for cleaning currency text coming out of
// spreadsheets, formatting comparable date keys, and other shared logic that
// doesn't fit into domain-specific packages.
package utils
