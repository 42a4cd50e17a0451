package sentinel

import "errors"

// ErrConflict is returned (optionally wrapped) by stores when a write
// collides with an existing key, so callers can tell it apart from
// infrastructure failures.
var ErrConflict = errors.New("conflict")
