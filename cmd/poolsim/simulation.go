package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/asset"
	"github.com/ajitpratap0/respawn/pkg/config"
	"github.com/ajitpratap0/respawn/pkg/host"
	"github.com/ajitpratap0/respawn/pkg/host/memhost"
	"github.com/ajitpratap0/respawn/pkg/instance"
	"github.com/ajitpratap0/respawn/pkg/logger"
	"github.com/ajitpratap0/respawn/pkg/pool"
)

const assetAddress = "enemies/goblin"

// liveObject is a claimed prop or asset waiting for its lifetime to end.
type liveObject struct {
	handle  host.Handle
	expires int
}

type simulation struct {
	cfg     *config.Config
	log     *zap.Logger
	scene   *memhost.Host
	dir     *instance.Directory
	props   *instance.Pool
	effects *instance.EffectPool
	assets  *asset.Pool
	records *pool.Pool[*liveObject]
	live    []*liveObject
	failed  int
}

func newSimulation(ctx context.Context, cfg *config.Config, log *zap.Logger) (*simulation, error) {
	scene := memhost.New()
	scene.SetEffectFrames(cfg.Simulation.EffectFrames)

	crate := scene.Spawn("crate")
	sparks := scene.Spawn("sparks")
	goblin := scene.Spawn("goblin")
	for _, template := range []host.Handle{crate, sparks, goblin} {
		scene.SetActive(template, false)
	}
	scene.Register(assetAddress, goblin)

	s := &simulation{
		cfg:   cfg,
		log:   log,
		scene: scene,
		dir:   instance.NewDirectory(scene, log.Named("directory")),
		records: pool.New(
			func() *liveObject { return &liveObject{} },
			func(o *liveObject) { *o = liveObject{} },
		),
	}

	var err error
	if s.props, err = instance.NewPool(s.dir, instance.FromTemplate(crate),
		instance.WithName("props"), instance.WithLogger(log.Named("instance"))); err != nil {
		return nil, err
	}
	if s.effects, err = instance.NewEffectPool(s.dir, sparks,
		instance.WithName("effects"), instance.WithLogger(log.Named("effect"))); err != nil {
		return nil, err
	}
	if s.assets, err = asset.NewPool(s.dir, asset.AddressLoader{Catalog: scene, Address: assetAddress},
		asset.WithName("assets"), asset.WithLogger(log.Named("asset"))); err != nil {
		return nil, err
	}

	for _, r := range s.recyclers() {
		if _, err := r.Allocate(ctx, cfg.Pool(r.name).Prewarm); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type namedRecycler struct {
	name string
	instance.Recycler
}

func (s *simulation) recyclers() []namedRecycler {
	return []namedRecycler{
		{"props", s.props},
		{"effects", s.effects},
		{"assets", s.assets},
	}
}

// run drives every configured frame and then shuts the pools down.
func (s *simulation) run(ctx context.Context) (*Report, error) {
	ctx = context.WithValue(ctx, logger.SceneKey, "poolsim")
	start := time.Now()
	frames := 0
	for frame := 1; frame <= s.cfg.Simulation.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.step(ctx, frame); err != nil {
			return nil, err
		}
		s.scene.Tick()
		frames++
	}

	live := len(s.live)
	s.shutdown()
	return s.report(frames, live, time.Since(start)), nil
}

func (s *simulation) step(ctx context.Context, frame int) error {
	sim := s.cfg.Simulation
	ctx = context.WithValue(ctx, logger.FrameKey, uint64(frame))

	expired := pool.ClaimList[*liveObject]()
	defer expired.Dispose()

	kept := s.live[:0]
	for _, o := range s.live {
		if o.expires <= frame {
			expired.Add(o)
			continue
		}
		kept = append(kept, o)
	}
	s.live = kept

	for _, o := range expired.All() {
		s.dir.Release(o.handle)
		s.records.Release(o)
	}

	for i := 0; i < sim.SpawnsPerFrame; i++ {
		h, err := s.props.Claim(ctx)
		if err != nil {
			return err
		}
		s.track(h, frame+sim.Lifetime)
	}

	for i := 0; i < sim.EffectsPerFrame; i++ {
		pos := host.Vec3{X: float64(frame), Z: float64(i)}
		if _, err := s.effects.Spawn(ctx, pos, host.Vec3{Y: 1}); err != nil {
			return err
		}
	}
	s.effects.Update()

	if sim.AssetEvery > 0 && frame%sim.AssetEvery == 0 {
		h, err := s.assets.Claim(ctx)
		if err != nil {
			s.failed++
			logger.WithContext(ctx, s.log).Warn("asset claim failed", zap.Error(err))
		} else {
			s.track(h, frame+sim.Lifetime)
		}
	}

	for _, r := range s.recyclers() {
		if maxIdle := s.cfg.Pool(r.name).MaxIdle; maxIdle > 0 {
			r.Prune(maxIdle)
		}
	}

	if frame%60 == 0 {
		s.log.Debug("frame",
			zap.Int("frame", frame),
			zap.Int("live", len(s.live)),
			zap.Int("props_idle", s.props.Len()),
			zap.Int("effects_playing", s.effects.Active()))
	}
	return nil
}

func (s *simulation) track(h host.Handle, expires int) {
	o := s.records.Claim()
	o.handle = h
	o.expires = expires
	s.live = append(s.live, o)
}

func (s *simulation) shutdown() {
	for _, o := range s.live {
		s.dir.Release(o.handle)
		s.records.Release(o)
	}
	s.live = s.live[:0]
	s.effects.ReleaseAll()

	s.props.Close()
	s.effects.Close()
	s.assets.Close()
}
