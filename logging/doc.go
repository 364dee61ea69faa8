// Package logging builds structured loggers on Go's standard library
// log/slog. Output goes to the writer supplied by the caller, as JSON by
// default or logfmt-style text on request.
package logging
