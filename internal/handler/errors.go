package handler

import "errors"

// statusCoder is implemented by errors that know their HTTP status, such as
// repository.NotFoundError.
type statusCoder interface {
	StatusCode() int
}

func statusOf(err error) (int, bool) {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}
