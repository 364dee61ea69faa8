package conf

import (
	"github.com/0xalexb/hjarta-conf/merge"
)

// Value is a read-through cache over one key path in a Config.
//
// Get re-extracts from the tree only when the owning Config's version moved
// since the last extraction; otherwise the cached value is returned without
// touching the tree. Call sites reading the same deep path on every
// iteration of a hot loop should hold a Value instead of walking the tree
// each time. A Value is not safe for concurrent use; all mutation must go
// through the owning Config so the version tracking stays sound.
type Value struct {
	cfg       *Config
	key       string
	subKeys   []string
	fallback  any
	mergeMode bool
	transform func(any) any

	cached any
	seen   uint64
	loaded bool
}

// ValueOption configures a Value.
type ValueOption func(*Value)

// WithSubKeys walks the given nested keys below the root key before caching.
func WithSubKeys(keys ...string) ValueOption {
	return func(v *Value) {
		v.subKeys = append([]string{}, keys...)
	}
}

// WithFallback sets the value used the moment any lookup step is missing.
func WithFallback(fallback any) ValueOption {
	return func(v *Value) {
		v.fallback = fallback
	}
}

// WithMergeFallback merges an extracted map over a copy of the (map)
// fallback instead of replacing it, so missing keys keep their defaults.
func WithMergeFallback() ValueOption {
	return func(v *Value) {
		v.mergeMode = true
	}
}

// WithTransform applies fn to the final value before caching.
func WithTransform(fn func(any) any) ValueOption {
	return func(v *Value) {
		v.transform = fn
	}
}

// NewValue binds a lazily-cached accessor to one path within cfg.
func NewValue(cfg *Config, key string, opts ...ValueOption) *Value {
	value := &Value{
		cfg: cfg,
		key: key,
	}

	for _, apply := range opts {
		apply(value)
	}

	return value
}

// Get returns the value at the bound path, re-extracting only when the
// owning Config changed since the last read.
func (v *Value) Get() any {
	version := v.cfg.Version()
	if v.loaded && version == v.seen {
		return v.cached
	}

	extracted := v.extract()

	if v.transform != nil {
		extracted = v.transform(extracted)
	}

	v.cached = extracted
	v.seen = version
	v.loaded = true

	return v.cached
}

func (v *Value) extract() any {
	current, err := v.cfg.Lookup(v.key)
	if err != nil {
		return v.fallback
	}

	for _, key := range v.subKeys {
		m, ok := current.(map[string]any)
		if !ok {
			return v.fallback
		}

		current, ok = m[key]
		if !ok {
			return v.fallback
		}
	}

	if v.mergeMode {
		if extracted, ok := current.(map[string]any); ok {
			if defaults, ok := v.fallback.(map[string]any); ok {
				return merge.Merge(merge.Clone(defaults), extracted)
			}
		}
	}

	return current
}
