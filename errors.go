package conf

import "errors"

// ErrKeyNotFound is returned by Lookup when the key is absent from the tree.
var ErrKeyNotFound = errors.New("config key not found")

// ErrNotResource is returned when path resolution is requested for a key
// whose value does not describe a file resource. This is a caller error:
// check Has/Get before asking for a path.
var ErrNotResource = errors.New("config entry does not describe a file resource")

// ErrInvalidExtension is returned when an explicit config path does not end
// in .yml, .yaml or .json.
var ErrInvalidExtension = errors.New("config file extension must be .yml, .yaml or .json")

// ErrEmptyName is returned when an Fx module is created with an empty name.
var ErrEmptyName = errors.New("module name cannot be empty")
