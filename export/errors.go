package export

import "errors"

// ErrNoSurface is returned when the surface capability is unavailable.
var ErrNoSurface = errors.New("export: surface unavailable")

// ErrEmptyTree is returned when enumeration finds no nodes at all. The root
// structure was not found; this aborts the run before any artifact exists.
var ErrEmptyTree = errors.New("export: no tree nodes found")

// ErrNothingExported is returned by Finalize when zero entries were added.
// Callers must treat it as a whole-run failure, distinct from a mid-run abort.
var ErrNothingExported = errors.New("export: nothing exported")
