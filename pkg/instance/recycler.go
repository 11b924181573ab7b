package instance

import (
	"context"

	"github.com/ajitpratap0/respawn/pkg/host"
)

// Recycler is the surface shared by the synchronous and the asynchronous
// object pools.
type Recycler interface {
	Owner

	// Claim returns an active object, reusing an idle one when possible.
	Claim(ctx context.Context) (host.Handle, error)

	// Allocate creates objects until at least minCount are idle and returns
	// how many it created.
	Allocate(ctx context.Context, minCount int) (int, error)

	// Prune destroys idle objects until at most maxCount remain and returns
	// how many live objects it destroyed.
	Prune(maxCount int) int

	// Clear destroys every idle object.
	Clear()

	// Len returns the number of queued objects, including any that were
	// destroyed behind the pool's back.
	Len() int

	Stats() Stats
}

// Stats counts the work a pool has done since it was built.
type Stats struct {
	Created   int64 `json:"created"`
	Claims    int64 `json:"claims"`
	Hits      int64 `json:"hits"`
	Releases  int64 `json:"releases"`
	Destroyed int64 `json:"destroyed"`
	Holes     int64 `json:"holes"`
	Failures  int64 `json:"failures"`
}

var (
	_ Recycler = (*Pool)(nil)
	_ Recycler = (*EffectPool)(nil)
)
