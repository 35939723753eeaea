// Package bootstrap runs the post-creation plan of a cluster: ordered
// groups of shell steps, executed strictly one after another.
//
// [Sequencer.Run] returns a lazy, single-use sequence of [StepOutcome]
// values. Each step is attempted up to three times by default; the first
// step that still fails ends the group and the rest of the plan.
package bootstrap
