package web

import "errors"

// ErrNoDocument is reported when data.json has not been saved yet.
var ErrNoDocument = errors.New("data.json has not been saved yet")
