// Package types defines the core types and interfaces for the XandAI
// provider kit: provider configuration, chat request/response formats,
// streaming, and the standardized provider error model.
package types
