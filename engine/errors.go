package engine

import "golang.org/x/xerrors"

// Kind classifies an error raised by an operator handler, per §7's taxonomy.
type Kind int

// Error kinds.
const (
	// Other is the zero value: an error that doesn't match any recognized
	// kind and always propagates out of onOperatorError.
	Other Kind = iota
	MissingOperand
	MissingResource
	MissingImageReader
	EmptyGraphicsStack
	MalformedTextArray
	TokenizerError
)

func (k Kind) String() string {
	switch k {
	case MissingOperand:
		return "MissingOperand"
	case MissingResource:
		return "MissingResource"
	case MissingImageReader:
		return "MissingImageReader"
	case EmptyGraphicsStack:
		return "EmptyGraphicsStack"
	case MalformedTextArray:
		return "MalformedTextArray"
	case TokenizerError:
		return "TokenizerError"
	default:
		return "Other"
	}
}

// Error is the error type operator handlers and the engine itself raise.
// Wrapping with xerrors preserves the original cause for xerrors.Is/As while
// attaching the §7 taxonomy kind and the operator name it occurred under.
type Error struct {
	Kind Kind
	Op   string // operator name, e.g. "Q", "Tj", "Do"
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return e.Kind.String() + " in " + e.Op + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

// Unwrap exposes the underlying cause to errors.Is/As and xerrors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// newError wraps `err` (or a message) as an Error of the given Kind for
// operator `op`, preserving the original error via xerrors.Errorf so a
// caller can still recover the root cause.
func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: xerrors.Errorf("%w", err)}
}

// KindOf classifies any error raised from an operator handler: engine errors
// report their own Kind; anything else is Other (§7: "Other — anything else
// bubbling out of a handler").
func KindOf(err error) Kind {
	var e *Error
	if xerrors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// IsRecoverable reports whether the default onOperatorError policy (§4.C,
// §7) recovers from `err` rather than propagating it: the four
// missing/empty kinds, plus (handled separately, by operator name, since
// "any error from the Do operator" is leniency by call site, not by kind)
// nothing else here.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case MissingOperand, MissingResource, MissingImageReader, EmptyGraphicsStack:
		return true
	default:
		return false
	}
}
