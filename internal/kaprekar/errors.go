package kaprekar

import "errors"

// Sentinel errors for the kaprekar package. Callers that need an
// application-facing error wrap these with pkg/errors.AppError.
var (
	// ErrOutOfRange is returned when a starting value cannot be represented
	// in the requested number of digits for the given base.
	ErrOutOfRange = errors.New("kaprekar: value out of range for digit count")

	// ErrOverflow is returned when base^digits does not fit in a uint64,
	// making the (base, digits) pair impossible to enumerate exhaustively.
	ErrOverflow = errors.New("kaprekar: base/digits pair overflows uint64")

	// ErrInvalidProblem is returned when a Problem fails basic validation
	// (base or digit count out of the supported range).
	ErrInvalidProblem = errors.New("kaprekar: invalid base/digits pair")

	// ErrWorkerFault is returned when a chunk's processing goroutine fails.
	ErrWorkerFault = errors.New("kaprekar: worker fault")
)
