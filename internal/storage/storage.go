package storage

import "errors"

// ErrNoSnapshot is returned by Load when nothing has been saved under a key.
// Callers treat it as "use the bundled defaults", never as a failure.
var ErrNoSnapshot = errors.New("no snapshot stored for key")
