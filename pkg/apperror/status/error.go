package status

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// Reserved ranges by domain:
//   0-999:     client/validation errors
//   1000-1999: internal errors

const (
	BadRequestBase    ErrorCode = 0
	InternalErrorBase ErrorCode = 1000
)

// Client/validation errors start at 0
const (
	InvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	MissingParams                                        // 1
	InvalidDepthLevel                                    // 2
	ConceptsNotFound                                     // 3
)

// Internal errors start at 1000
const (
	Internal           ErrorCode = InternalErrorBase + iota // 1000
	StoreUnavailable                                        // 1001
	GenerationFailed                                        // 1002
	IngestStartFailed                                       // 1003
)

// CodedError represents an error with an associated ErrorCode
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

type codedError struct {
	code ErrorCode
	err  error
}

func (e codedError) Error() string        { return e.err.Error() }
func (e codedError) Unwrap() error        { return e.err }
func (e codedError) ErrorCode() ErrorCode { return e.code }

// New creates a new CodedError with the given code and underlying error
func New(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return codedError{code: code, err: err}
}
