package nba

import "errors"

// NotFoundError reports an identifier that could not be resolved, or a
// required parameter that was missing. It is surfaced directly to the
// caller and never retried.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// RetrievalError reports that every discovery strategy was exhausted
// without producing any data.
type RetrievalError struct {
	Message string
}

func (e *RetrievalError) Error() string { return e.Message }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsRetrieval(err error) bool {
	var re *RetrievalError
	return errors.As(err, &re)
}
