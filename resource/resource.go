// Package resource classifies and resolves configuration entries that
// describe external files.
//
// A configuration sub-map is a resource descriptor when its keys are a
// subset of the recognized descriptor fields (name, url, paths, is_file,
// download_dest, _path), or when it carries an explicit is_file flag.
// Classification is structural and happens once, when the owning tree is
// indexed; the Locator then turns a descriptor into a concrete local file
// path, caching each successful resolution.
package resource

// Recognized descriptor fields.
const (
	fieldName         = "name"
	fieldURL          = "url"
	fieldPaths        = "paths"
	fieldIsFile       = "is_file"
	fieldDownloadDest = "download_dest"
	fieldPath         = "_path"
)

var descriptorFields = map[string]struct{}{
	fieldName:         {},
	fieldURL:          {},
	fieldPaths:        {},
	fieldIsFile:       {},
	fieldDownloadDest: {},
	fieldPath:         {},
}

// Descriptor describes an external file declared inside a configuration
// tree. All fields are optional; Name defaults to the owning tree key at
// resolution time.
type Descriptor struct {
	// Name is the logical file name to look for.
	Name string

	// Paths is an ordered list of candidate root directories to search.
	Paths []string

	// URL is a remote location. When set, download takes precedence over
	// any search path.
	URL string

	// DownloadDest is the destination root for a downloaded file. Empty
	// means the locator-wide default.
	DownloadDest string
}

// Classify reports whether m is a resource descriptor and, if so, parses it.
//
// An explicit is_file flag decides directly. Without one, m is a descriptor
// iff its keys are a subset of the recognized fields and at least one of
// name, url or paths is present. Any unrecognized key disqualifies the map:
// it is then a plain nested mapping.
func Classify(m map[string]any) (*Descriptor, bool) {
	if flag, ok := m[fieldIsFile]; ok {
		isFile, ok := flag.(bool)
		if !ok || !isFile {
			return nil, false
		}

		return parseDescriptor(m), true
	}

	for key := range m {
		if _, ok := descriptorFields[key]; !ok {
			return nil, false
		}
	}

	_, hasName := m[fieldName]
	_, hasURL := m[fieldURL]
	_, hasPaths := m[fieldPaths]

	if !hasName && !hasURL && !hasPaths {
		return nil, false
	}

	return parseDescriptor(m), true
}

func parseDescriptor(m map[string]any) *Descriptor {
	desc := &Descriptor{}

	if name, ok := m[fieldName].(string); ok {
		desc.Name = name
	}

	if url, ok := m[fieldURL].(string); ok {
		desc.URL = url
	}

	if dest, ok := m[fieldDownloadDest].(string); ok {
		desc.DownloadDest = dest
	}

	desc.Paths = stringList(m[fieldPaths])

	return desc
}

// stringList coerces a decoded YAML/JSON sequence into a string slice.
// Non-string elements are skipped; a bare string becomes a one-element list.
func stringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []string{val}
	case []string:
		out := make([]string, len(val))
		copy(out, val)

		return out
	case []any:
		out := make([]string, 0, len(val))

		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}
