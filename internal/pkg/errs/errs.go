package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrVersionIsInvalid  = errors.New("version is invalid")
	ErrStatusTransition  = errors.New("status transition is not allowed")
	ErrNotAuthorized     = errors.New("actor is not authorized")
	ErrConflict          = errors.New("resource conflict")
	ErrExternalService   = errors.New("external service failure")
)

// ObjectNotFoundError reports an aggregate or entity that could not be resolved by its identifier.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrObjectNotFound}
	}
	return []error{ErrObjectNotFound, e.Cause}
}

// ValueIsInvalidError reports a value that failed a domain rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrValueIsInvalid}
	}
	return []error{ErrValueIsInvalid, e.Cause}
}

// ValueIsOutOfRangeError reports a value outside of its inclusive [Min, Max] bounds.
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrValueIsOutOfRange}
	}
	return []error{ErrValueIsOutOfRange, e.Cause}
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrValueIsRequired}
	}
	return []error{ErrValueIsRequired, e.Cause}
}

// VersionIsInvalidError reports a stale optimistic-concurrency version: the row was
// modified by someone else between read and write.
type VersionIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewVersionIsInvalidError(paramName string) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName}
}

func NewVersionIsInvalidErrorWithCause(paramName string, cause error) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *VersionIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrVersionIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrVersionIsInvalid, e.ParamName)
}

func (e *VersionIsInvalidError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrVersionIsInvalid}
	}
	return []error{ErrVersionIsInvalid, e.Cause}
}

// StatusTransitionError reports an operation that is not valid for the current state
// of a state machine (job lifecycle, payment, tracking session).
type StatusTransitionError struct {
	Entity string
	From   string
	To     string
}

func NewStatusTransitionError(entity, from, to string) *StatusTransitionError {
	return &StatusTransitionError{Entity: entity, From: from, To: to}
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot move from %s to %s", ErrStatusTransition, e.Entity, e.From, e.To)
}

func (e *StatusTransitionError) Unwrap() error {
	return ErrStatusTransition
}

// NotAuthorizedError reports an actor trying to act on a resource it does not own.
type NotAuthorizedError struct {
	ActorID any
	Action  string
}

func NewNotAuthorizedError(actorID any, action string) *NotAuthorizedError {
	return &NotAuthorizedError{ActorID: actorID, Action: action}
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("%s: %s may not %s", ErrNotAuthorized, e.ActorID, e.Action)
}

func (e *NotAuthorizedError) Unwrap() error {
	return ErrNotAuthorized
}

// ExternalServiceError reports a failed or rejected call to a third-party system.
type ExternalServiceError struct {
	Service string
	Cause   error
}

func NewExternalServiceError(service string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Cause: cause}
}

func (e *ExternalServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrExternalService, e.Service, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrExternalService, e.Service)
}

func (e *ExternalServiceError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrExternalService}
	}
	return []error{ErrExternalService, e.Cause}
}

// IsValidation reports whether err is caused by malformed input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValueIsInvalid) ||
		errors.Is(err, ErrValueIsOutOfRange) ||
		errors.Is(err, ErrValueIsRequired)
}

func sanitize(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
