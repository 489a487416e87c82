package rank

import "github.com/pkg/errors"

var (
	// ErrPageNotFound is returned when the transition model is asked about
	// a page that is not in the graph
	ErrPageNotFound = errors.New("page not found")
	// ErrInvalidConfig is returned for out of range ranking parameters
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNotConverged is returned when the iterative estimator exhausts
	// its iteration budget
	ErrNotConverged = errors.New("did not converge")
)
