package conf

// getOptions controls one Get, Path or Read call.
type getOptions struct {
	def             any
	tryDefaultPaths bool
	dest            string
	destFirst       bool
	readFile        bool
}

// GetOption configures a single Get, Path or Read call.
type GetOption func(*getOptions)

// WithDefault sets the value returned when the key is absent.
func WithDefault(v any) GetOption {
	return func(o *getOptions) {
		o.def = v
	}
}

// WithTryDefaultPaths appends the locator's default search roots to the
// descriptor's own candidate list during resolution.
func WithTryDefaultPaths() GetOption {
	return func(o *getOptions) {
		o.tryDefaultPaths = true
	}
}

// WithDestPath supplies a fallback directory: when no candidate exists, the
// resolution returns dir/name without verifying that the path exists. This
// resolves where a new file should be written.
func WithDestPath(dir string) GetOption {
	return func(o *getOptions) {
		o.dest = dir
	}
}

// WithDestFirstCandidate uses the first candidate root as the fallback
// directory instead of an explicit one.
func WithDestFirstCandidate() GetOption {
	return func(o *getOptions) {
		o.destFirst = true
	}
}

// WithReadFile makes Get return the interpreted contents of the resolved
// file instead of its path.
func WithReadFile() GetOption {
	return func(o *getOptions) {
		o.readFile = true
	}
}

func applyGetOptions(opts []GetOption) getOptions {
	var options getOptions

	for _, apply := range opts {
		apply(&options)
	}

	return options
}
