// Package services provides the domain services of the cleaning service: rules that span
// several aggregates or need no state at all.
//
// The package includes:
//   - CostCalculator: base and overtime pricing on integer minor units
//   - ConflictChecker: half-open overlap test against a cleaner's commitments
//   - MatchingEngine: multiplicative cleaner/job score and ranking
//   - WorkPolicy: business-hours and punctuality gate for starting work
package services
