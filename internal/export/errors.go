package export

import "errors"

// ErrNothingToExport is returned when a result has no placements to render.
var ErrNothingToExport = errors.New("nothing to export")
