// Package ranking scores freelancers and orders them for the four ranking
// modes: overall quality, recommendations for a job, freelancers similar
// to a reference, and filtered search.
//
// Scoring is split in three layers. NewSignals resolves every nullable
// field of a candidate into concrete values once. The calculators turn
// Signals into 0-100 sub-scores. The Composer weights the sub-scores into
// a base score and applies the activity multiplier. The Engine fetches
// candidates through a Store, scores, filters, sorts and truncates.
//
// Nothing in the package reads the wall clock directly: the Engine takes
// a clock in its config and passes a single "now" to every score in a call.
package ranking
