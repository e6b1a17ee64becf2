package memory

import "errors"

// ErrNotFound is returned by updates that target a missing row.
var ErrNotFound = errors.New("memory: row not found")
