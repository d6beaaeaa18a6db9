// Package payment implements the Payment aggregate for mobile-money (STK push) charges.
//
// A Payment belongs to one job, carries a unique 12-character internal reference generated
// with nanoid, and keeps the gateway's correlation identifiers in a metadata bag so callbacks
// and status polls can be reconciled idempotently. Phone numbers are normalized to 2547XXXXXXXX.
package payment
