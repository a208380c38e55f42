package safe

// FieldKind names the normalizer that substituted a fallback.
type FieldKind string

const (
	KindImage   FieldKind = "image"
	KindText    FieldKind = "text"
	KindList    FieldKind = "list"
	KindNumber  FieldKind = "number"
	KindBoolean FieldKind = "boolean"
)

// FallbackObserver is told each time a Normalizer returns a fallback.
type FallbackObserver interface {
	ObserveFallback(kind FieldKind)
}

// FallbackObserverFunc adapts a function to FallbackObserver.
type FallbackObserverFunc func(kind FieldKind)

// ObserveFallback calls f(kind).
func (f FallbackObserverFunc) ObserveFallback(kind FieldKind) {
	f(kind)
}

// Normalizer applies the package functions against its own Defaults and
// reports fallback substitutions. It holds no mutable state and may be
// shared between goroutines as long as the observer can be.
type Normalizer struct {
	defaults Defaults
	observer FallbackObserver
}

// New creates a Normalizer. A nil observer disables reporting.
func New(d Defaults, observer FallbackObserver) *Normalizer {
	return &Normalizer{
		defaults: d.clone(),
		observer: observer,
	}
}

// Defaults returns a copy of the normalizer's fallback table.
func (n *Normalizer) Defaults() Defaults {
	return n.defaults.clone()
}

// Image is ImageOr with the feature image default.
func (n *Normalizer) Image(v any) string {
	return n.ImageOr(v, n.defaults.FeatureImage)
}

// ImageOr behaves like the package-level ImageOr.
func (n *Normalizer) ImageOr(v any, fallback string) string {
	if s, ok := text(v); ok {
		return s
	}
	n.observe(KindImage)
	return fallback
}

// Text behaves like the package-level Text.
func (n *Normalizer) Text(v any) string {
	return n.TextOr(v, "")
}

// TextOr behaves like the package-level TextOr.
func (n *Normalizer) TextOr(v any, fallback string) string {
	if s, ok := text(v); ok {
		return s
	}
	n.observe(KindText)
	return fallback
}

// Array behaves like the package-level Array. Only a non-list input counts
// as a fallback; dropped elements do not.
func (n *Normalizer) Array(v any) []any {
	if out, ok := list(v); ok {
		return out
	}
	n.observe(KindList)
	return []any{}
}

// Strings behaves like the package-level Strings.
func (n *Normalizer) Strings(v any) []string {
	if _, ok := list(v); !ok {
		n.observe(KindList)
	}
	return Strings(v)
}

// Number behaves like the package-level Number.
func (n *Normalizer) Number(v any) float64 {
	return n.NumberOr(v, 0)
}

// NumberOr behaves like the package-level NumberOr.
func (n *Normalizer) NumberOr(v any, fallback float64) float64 {
	if f, ok := number(v); ok {
		return f
	}
	n.observe(KindNumber)
	return fallback
}

// Boolean behaves like the package-level Boolean.
func (n *Normalizer) Boolean(v any) bool {
	return n.BooleanOr(v, false)
}

// BooleanOr behaves like the package-level BooleanOr.
func (n *Normalizer) BooleanOr(v any, fallback bool) bool {
	if b, ok := boolean(v); ok {
		return b
	}
	n.observe(KindBoolean)
	return fallback
}

func (n *Normalizer) observe(kind FieldKind) {
	if n.observer != nil {
		n.observer.ObserveFallback(kind)
	}
}
