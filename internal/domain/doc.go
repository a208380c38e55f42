// Package domain defines the content types served by gigsafe.
//
// Upstream data enters as RawRecord values: untrusted maps decoded from JSON
// or YAML. The content package turns them into Post and Gig values, whose
// fields are always populated and renderable. PageMeta is the metadata
// derived from a normalized record for <head> tags and JSON-LD.
//
// # Core Types
//
// Post covers every long-form page on the site: guides, platform reviews,
// and comparisons, in any locale. Author is embedded in Post.
//
// Gig is a marketplace service listing, searched and sorted in memory by the
// gigs package.
//
// Fragment is a batch of raw records used for import and export.
//
// # Design Principles
//
// - No database or transport dependencies
// - Normalized types never carry absent values
// - Raw input stays untyped until it is normalized
package domain
