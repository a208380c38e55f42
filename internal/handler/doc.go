// Package handler implements the HTTP API of gigsafe.
//
// Routes are served by a chi router. Every query parameter is read through
// the safe normalizers, so malformed filters fall back to defaults instead
// of failing the request.
//
// # Routes
//
//	GET    /healthz
//	GET    /api/posts                          ?locale=&kind=&category=&featured=&limit=&offset=
//	GET    /api/posts/{locale}/{slug}
//	DELETE /api/posts/{locale}/{slug}
//	GET    /api/posts/{locale}/{slug}/meta
//	GET    /api/gigs                           ?q=&category=&min_price=&max_price=&min_rating=&max_delivery_days=&featured=&sort=&limit=&offset=
//	GET    /api/gigs/{id}
//	GET    /api/gigs/{id}/meta
//	POST   /api/import/{format}                json | yaml
//	GET    /api/export/{format}                json | yaml
//	GET    /p/{locale}/{slug}                  HTML preview with rendered head tags
//	GET    /events                             Server-Sent Events
//	GET    /metrics                            Prometheus
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes.
// Error responses return JSON with {error, details} structure.
//
// # Middleware
//
// Recover, request IDs, zap request logging, CORS and request metrics, in
// that order.
package handler
