// Package safe normalizes untrusted content values before they reach
// rendering, metadata generation, or persistence.
//
// Content records arrive from JSON and YAML sources, form posts, and query
// strings. Any field may be missing, empty, whitespace-only, or of the wrong
// type. The functions in this package accept such a value as `any` and always
// return a usable value of the target type. When the input fails the check
// for its type, the caller's fallback (or the registry default) is returned
// instead. Nothing in this package returns an error or panics.
//
// # Absence
//
// A nil interface and a nil pointer are both treated as absent. Non-nil
// pointers are dereferenced before any check, so *string and *int fields from
// optional struct members normalize the same way as their values.
//
// # Functions
//
// Image and Text trim surrounding whitespace and require a non-empty string.
// Number accepts numeric kinds, numeric strings and json.Number; only NaN is
// rejected, so 0 and "0" are valid. Boolean accepts bools, a fixed set of
// words, and numbers. Array keeps the truthy elements of any slice or array,
// where the falsy set is defined by Truthy.
//
// Array's truthiness and Number's validity differ:
// 0 is dropped from lists but is a valid number.
//
// # Defaults Registry
//
// Registry returns the built-in fallback table. It is built once and never
// mutated; every call hands out a copy. NewDefaults derives a custom table
// from configuration at startup, and Normalizer binds one to a set of methods
// that also report fallback substitutions to an observer.
package safe
