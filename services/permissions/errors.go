package permissions

import "errors"

// The two non-exceptional outcomes of the records permission model. Both are
// expected, data-dependent results that controllers translate into 404/403
// responses; neither is ever fatal.
var (
	ErrNotFound         = errors.New("record not found")
	ErrPermissionDenied = errors.New("permission denied")
)
