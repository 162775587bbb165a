// Package wizard drives a multi-step form: a fixed, ordered list of steps,
// a sequencer that only moves forward past valid steps, and a flow that owns
// the form record until it is submitted through a gateway or abandoned.
//
// Validation is never cached. Every gate, including the final step's
// aggregate check, is recomputed from the current form record.
package wizard
