// Package service implements business logic for gigsafe.
//
// This package provides service layers that coordinate between the HTTP
// handlers, the CLI and the repository layer.
//
// # Services
//
// ContentService imports raw records through a codec, normalizes them,
// skips posts whose content fingerprint is unchanged and stores the rest.
// It also exports stored content and builds page metadata for posts.
//
// GigService searches marketplace listings with filters read from query
// parameters and builds gig page metadata.
//
// # Event System
//
// Services publish events via EventBus for real-time updates to connected
// clients via Server-Sent Events (SSE).
package service
