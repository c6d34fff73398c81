package eventstore

import "errors"

// ErrNoPendingEvent is returned by Acknowledge when the cursor already
// equals the log length. It signals a caller usage error, distinct from
// persistence failures, and is never fatal.
var ErrNoPendingEvent = errors.New("no pending event to acknowledge")
