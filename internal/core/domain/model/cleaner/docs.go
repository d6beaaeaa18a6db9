// Package cleaner holds the cleaner Profile: the rate, rating and track record the
// matching engine scores against, plus the active and verified flags that gate
// who may be offered work.
package cleaner
