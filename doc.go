// Package respawn recycles objects that are expensive to create so that a
// game loop can claim and release them every frame without allocating.
//
// # Layers
//
// The module is organised in three layers that build on each other:
//
//   - pool: generic FIFO pools of plain values, a per-type shared pool,
//     and disposable list and object wrappers that return their storage
//     when disposed.
//   - instance: pools of host-managed scene objects. Every object carries a
//     lifecycle Marker that knows its owning pool, broadcasts claim and
//     release notifications, and lets code release an object from its
//     handle alone. EffectPool adds self-releasing visual effects.
//   - asset: the same contract for objects whose creation completes
//     asynchronously, such as instances loaded from an asset catalog.
//
// The host object model (activation, destruction, cloning, effect
// playback, frame scheduling) is abstracted in package host. Package
// memhost implements it in memory for tests and for the poolsim command.
//
// # Quick Start
//
//	scene := memhost.New()
//	dir := instance.NewDirectory(scene, nil)
//	crates, err := instance.NewPool(dir, instance.FromTemplate(cratePrefab),
//		instance.WithName("crates"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	crate, err := crates.Claim(ctx)
//	...
//	dir.Release(crate) // back to the crates pool
//
// # Observability
//
// Pools log through zap (package logger), count claims, hits, releases and
// creations with Prometheus (package metrics), and trace asynchronous
// creation with OpenTelemetry (package observability).
//
// # Concurrency
//
// Pools are meant to be driven from the frame loop and are not safe for
// concurrent use. The shared per-type pools are the exception only in that
// looking one up is safe; using it is not.
package respawn
