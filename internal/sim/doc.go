// Package sim orchestrates the closed-loop soil moisture simulation.
//
// An [Engine] owns the fixed time grid and steps the loop in lockstep each
// sample: the PID controller computes the irrigation signal from the previous
// measurement, the plant advances the true state, and the Luenberger observer
// advances its estimate from the same measurement. At completion the engine
// assembles the closed-loop matrices and attaches the [analysis.Report].
//
//	engine, err := sim.New(cfg)
//	result, err := engine.Run(ctx)
//
// The stepping loop is strictly sequential: sample i is written exactly once,
// from sample i-1. There is no concurrency and no cancellation requirement
// beyond the context check each step.
package sim
