package report

import "errors"

// ErrUnknownFormat is returned by NewWriter for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")
