package workspace

import "errors"

// ErrHistoryDisabled is returned by Restore when no history store is configured.
var ErrHistoryDisabled = errors.New("history is disabled")
