package nurbs

import "github.com/pkg/errors"

// The three failure kinds of this package. Every error returned by an
// exported function wraps exactly one of them; match with errors.Is. Failures
// are detected eagerly and no partial result is ever returned alongside one.
var (
	// ErrInvalidInput reports malformed arguments: empty curve lists,
	// breakpoints outside a curve's domain, mismatched grid shapes, or
	// supplying intersection parameters for only one direction.
	ErrInvalidInput = errors.New("nurbs: invalid input")

	// ErrUnsupportedInput reports inputs that are well-formed but outside the
	// algorithm's domain, such as rational curves supplied to Gordon's
	// construction.
	ErrUnsupportedInput = errors.New("nurbs: unsupported input")

	// ErrNumericalFailure reports numerical degeneracy: singular or
	// ill-conditioned interpolation systems, zero-length segments produced by
	// reparametrization, or unification that cannot preserve geometry within
	// tolerance. More computation cannot fix these; the inputs themselves are
	// degenerate.
	ErrNumericalFailure = errors.New("nurbs: numerical failure")
)

func invalidf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

func unsupportedf(format string, args ...any) error {
	return errors.Wrapf(ErrUnsupportedInput, format, args...)
}

func numericalf(format string, args ...any) error {
	return errors.Wrapf(ErrNumericalFailure, format, args...)
}
