// Package instance pools host-managed scene objects.
//
// A Pool recycles objects that are expensive to build (prefab clones,
// spawned props, effect rigs). Claim hands out the oldest released object
// that is still alive, or manufactures one through the pool's Source; Release
// deactivates the object and queues it again.
//
// # Lifecycle Markers
//
// Every object a pool produces gets a Marker, stored in the pool's Directory
// next to the object's handle. The marker remembers which pool owns the
// object by PoolID, never by reference, and broadcasts claim and release
// notifications to its listeners in registration order. Code that only holds
// a handle can give it back without knowing its pool:
//
//	dir.Release(h) // back to its pool, or destroyed if it has none
//
// # Creation Strategies
//
// Exactly one strategy is chosen when the pool is built:
//
//	instance.FromFunc(func() host.Handle { return scene.Spawn("crate") })
//	instance.FromTemplate(cratePrefab)
//	instance.FromFactory(crateFactory)
//
// # Effects
//
// EffectPool specialises Pool for fire-and-forget visual effects: each
// claimed effect starts playing and is released automatically by Update once
// the host reports it finished.
//
// # Concurrency
//
// Pools, markers and directories belong to the goroutine that runs the
// frame loop. Nothing here is safe for concurrent use.
package instance
