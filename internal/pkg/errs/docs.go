// Package errs provides the error taxonomy shared by every layer of the cleaning service.
//
// Each error kind follows one pattern: a sentinel (ErrValueIsRequired, ErrStatusTransition, ...)
// plus a struct carrying details whose Unwrap returns the sentinel, so callers match with
// errors.Is and read details with errors.As.
//
// Mapping to the domain vocabulary:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed input
//   - StatusTransitionError: the operation is not valid for the current state
//   - NotAuthorizedError: the actor does not own the resource
//   - ObjectNotFoundError: job, slot, payment or session cannot be resolved
//   - ExternalServiceError: the payment gateway or another third party failed
//   - VersionIsInvalidError: a concurrent writer won the optimistic-concurrency race
package errs
