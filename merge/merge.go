// Package merge implements recursive merging of nested string-keyed maps
// with explicit, per-call merge strategies.
//
// By default any non-map value in the update replaces the value in the base;
// nested maps are merged key by key. A Handler attached to the call can
// override replacement for values it matches, e.g. Append concatenates
// slices instead of discarding the old one.
package merge

// Handler resolves a conflict between an existing base value and its update.
// Match decides whether the handler applies to an incoming value; Apply
// produces the value to store. Apply results are not validated.
type Handler struct {
	Match func(v any) bool
	Apply func(old, new any) any
}

// Append returns a Handler that concatenates []any values instead of
// replacing them. A base value that is not a slice is replaced as usual.
func Append() Handler {
	return Handler{
		Match: func(v any) bool {
			_, ok := v.([]any)

			return ok
		},
		Apply: func(old, new any) any {
			oldList, ok := old.([]any)
			if !ok {
				return new
			}

			newList, ok := new.([]any)
			if !ok {
				return new
			}

			combined := make([]any, 0, len(oldList)+len(newList))
			combined = append(combined, oldList...)
			combined = append(combined, newList...)

			return combined
		},
	}
}

// Handle builds a custom Handler from a match predicate and an apply function.
func Handle(match func(v any) bool, apply func(old, new any) any) Handler {
	return Handler{Match: match, Apply: apply}
}

// Merge recursively merges src into dst and returns dst. dst is mutated.
//
// For each key in src: if the value is a map and the corresponding dst value
// is absent or also a map, the two are merged recursively (an absent dst
// entry is initialized to an empty map first, a non-map dst entry is
// replaced). Otherwise, if a handler matches the value and the key already
// exists in dst, the handler result is stored. Otherwise the src value
// replaces the dst entry. Merge is total over well-formed map inputs.
func Merge(dst, src map[string]any, handlers ...Handler) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}

	for key, val := range src {
		srcMap, isMap := val.(map[string]any)
		if isMap {
			dstMap, ok := dst[key].(map[string]any)
			if !ok {
				dstMap = make(map[string]any, len(srcMap))
			}

			dst[key] = Merge(dstMap, srcMap, handlers...)

			continue
		}

		if old, exists := dst[key]; exists {
			if handler, ok := matchHandler(handlers, val); ok {
				dst[key] = handler.Apply(old, val)

				continue
			}
		}

		dst[key] = val
	}

	return dst
}

func matchHandler(handlers []Handler, v any) (Handler, bool) {
	for _, h := range handlers {
		if h.Match != nil && h.Match(v) {
			return h, true
		}
	}

	return Handler{}, false
}

// Clone returns a deep copy of a nested map. Maps and slices are copied
// recursively; all other values are shared.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = cloneValue(val)
	}

	return dst
}

func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, val := range src {
		dst[i] = cloneValue(val)
	}

	return dst
}

func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return Clone(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}
