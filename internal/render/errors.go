package render

import "errors"

// ErrRenderFailed wraps every failure while producing a document. Callers
// never receive partial output alongside it.
var ErrRenderFailed = errors.New("document rendering failed")
