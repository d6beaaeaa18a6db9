// Package kernel provides the value objects shared by every aggregate of the cleaning service:
// identifiers (UUID), job locations (Location), amounts in minor currency units (Money)
// and half-open time intervals (TimeWindow).
//
// Values are immutable. Zero values of UUID and Location are invalid and fail Validate.
package kernel
