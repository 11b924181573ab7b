package instance

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/host/memhost"
)

// BenchmarkClaimRelease measures a full claim and release cycle including
// marker notifications.
func BenchmarkClaimRelease(b *testing.B) {
	ctx := context.Background()
	h := memhost.New()
	template := h.Spawn("crate")
	dir := NewDirectory(h, zap.NewNop())
	p, err := NewPool(dir, FromTemplate(template), WithLogger(zap.NewNop()))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		obj, err := p.Claim(ctx)
		if err != nil {
			b.Fatal(err)
		}
		dir.Release(obj)
	}
}
