// Package conf merges layered configuration sources into one queryable tree
// and resolves entries that describe external files to local paths.
//
// A Config is built either from one explicit file or from up to three layers
// merged in fixed precedence (lowest to highest): an embedded base config,
// an installed shared config file, and a user config file. Missing default
// layers are treated as empty; an explicit path that is missing or has an
// extension other than .yml, .yaml or .json is a fatal validation error.
//
// # Resource entries
//
// A tree entry whose sub-map keys are a subset of {name, url, paths,
// is_file, download_dest, _path} describes an external file instead of a
// literal value:
//
//	stopwords:
//	  name: stopwords.txt
//	  paths: [".", "/usr/share/myapp"]
//	embeddings:
//	  url: https://example.com/embeddings.bin
//	  download_dest: ~/.cache/myapp
//
// Get on such a key resolves it to a concrete local path (downloading when a
// url is declared, otherwise scanning the candidate roots in order, first
// existing match wins) and caches the resolution for the lifetime of the
// Config. Reload discards all mutations and resolution caches.
//
// # Concurrency
//
// Every Config operation holds the instance's single lock for its full
// duration, including downloads, and Reload acts as a full barrier. Value
// instances are read-through caches for one key path and are not themselves
// safe for concurrent use.
package conf
