// Package merge provides the field-level strategies used to layer partially
// specified version descriptors on top of each other.
//
// Each descriptor type implements [Mergeable] by building its result field by
// field, calling exactly one strategy helper per field:
//
//	func (l Library) Merge(o Library) Library {
//	    return Library{
//	        Name:      merge.Recurse(l.Name, o.Name),
//	        URL:       merge.OverwriteIfPresent(l.URL, o.URL),
//	        Natives:   merge.OverwriteKeyed(l.Natives, o.Natives),
//	        Libraries: merge.Append(l.Libraries, o.Libraries),
//	    }
//	}
//
// All helpers are pure: inputs are never mutated. Results may share
// storage with their inputs, so merged values must be treated as immutable.
package merge

// Mergeable is implemented by descriptor types that can absorb an overlay of
// the same type. Merge returns the combined value and leaves both operands
// untouched.
type Mergeable[T any] interface {
	Merge(overlay T) T
}

// Overwrite unconditionally takes the overlay. Last write wins.
func Overwrite[T any](_, overlay T) T {
	return overlay
}

// OverwriteIfPresent takes the overlay only when it is set.
func OverwriteIfPresent[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

// OverwriteIfNonZero is OverwriteIfPresent for plain values, where the zero
// value means "not specified".
func OverwriteIfNonZero[T comparable](base, overlay T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

// Append concatenates base then overlay into a fresh slice. A nil overlay
// keeps base as is, and a nil base adopts the overlay, so "absent" and
// "empty" stay distinguishable in the result.
func Append[S ~[]E, E any](base, overlay S) S {
	if overlay == nil {
		return base
	}
	if base == nil {
		return overlay
	}
	out := make(S, 0, len(base)+len(overlay))
	out = append(out, base...)
	return append(out, overlay...)
}

// Recurse merges both sides when both are present and otherwise takes
// whichever side is present.
func Recurse[T Mergeable[T]](base, overlay *T) *T {
	if overlay == nil {
		return base
	}
	if base == nil {
		return overlay
	}
	merged := (*base).Merge(*overlay)
	return &merged
}

// RecurseMap merges two maps key-wise. Keys only in overlay are inserted,
// keys in both are merged recursively, and keys only in base are kept.
func RecurseMap[M ~map[K]V, K comparable, V Mergeable[V]](base, overlay M) M {
	if overlay == nil {
		return base
	}
	if base == nil {
		return overlay
	}
	out := make(M, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if existing, ok := out[k]; ok {
			out[k] = existing.Merge(v)
		} else {
			out[k] = v
		}
	}
	return out
}

// OverwriteKeyed inserts or replaces overlay entries by key without
// recursing into values.
func OverwriteKeyed[M ~map[K]V, K comparable, V any](base, overlay M) M {
	if overlay == nil {
		return base
	}
	if base == nil {
		return overlay
	}
	out := make(M, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// All folds layers left to right: All(a, b, c) == a.Merge(b).Merge(c).
func All[T Mergeable[T]](base T, layers ...T) T {
	for _, l := range layers {
		base = base.Merge(l)
	}
	return base
}
