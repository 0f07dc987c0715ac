// Package pipeline runs a list of pairs through a Runner on a bounded
// worker pool and hands results to a visit callback in input order.
//
// Runner is the only seam; tests plug in fakes, the app plugs in
// *engine.Engine.
package pipeline
