package objects

import "fmt"

// ReturnValue classifies an operation outcome. Callers branch on the
// class, never on the message text.
type ReturnValue int

const (
	OK ReturnValue = iota
	// NotFound covers missing objects, tokens and records. Private objects
	// looked up without the user role report NotFound too, on purpose.
	NotFound
	// TokenNotRecognized is the detection-flow sentinel: the probed driver
	// was the wrong family, keep trying the next candidate.
	TokenNotRecognized
	NotSupported
	WrongCredential
	DriverFailure
	ArgumentInvalid
	TokenNotPresent
	SessionInvalid
	DeviceError
)

func (code ReturnValue) String() string {
	switch code {
	case OK:
		return "ok"
	case NotFound:
		return "not found"
	case TokenNotRecognized:
		return "token not recognized"
	case NotSupported:
		return "not supported"
	case WrongCredential:
		return "wrong credential"
	case DriverFailure:
		return "driver failure"
	case ArgumentInvalid:
		return "argument invalid"
	case TokenNotPresent:
		return "token not present"
	case SessionInvalid:
		return "session invalid"
	case DeviceError:
		return "device error"
	}
	return "unknown"
}

// A TkError is the error type used across the module. Who names the
// operation that failed, Description says what happened and Code is the
// class callers dispatch on.
type TkError struct {
	Who         string
	Description string
	Code        ReturnValue
}

// NewError creates a TkError.
func NewError(who, description string, code ReturnValue) *TkError {
	return &TkError{
		Who:         who,
		Description: description,
		Code:        code,
	}
}

func (err *TkError) Error() string {
	return fmt.Sprintf("%s: %s", err.Who, err.Description)
}

// Is matches errors by code, so errors.Is works against sentinel TkErrors
// regardless of origin.
func (err *TkError) Is(target error) bool {
	tkErr, ok := target.(*TkError)
	return ok && tkErr.Code == err.Code
}

// CodeOf extracts the class of an error. nil maps to OK; foreign errors
// map to DriverFailure since they can only come from below the driver
// boundary.
func CodeOf(err error) ReturnValue {
	if err == nil {
		return OK
	}
	if tkErr, ok := err.(*TkError); ok {
		return tkErr.Code
	}
	return DriverFailure
}
