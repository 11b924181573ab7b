package asset

import (
	"context"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/host"
)

// Loader produces one object asynchronously.
type Loader interface {
	Load(ctx context.Context) (host.Handle, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (host.Handle, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context) (host.Handle, error) {
	return f(ctx)
}

// Catalog instantiates assets by address.
type Catalog interface {
	Instantiate(ctx context.Context, address string) (host.Handle, error)
}

// Reference is a typed handle to a single asset.
type Reference interface {
	Instantiate(ctx context.Context) (host.Handle, error)
}

// Releaser returns instantiated objects to the asset system. ReleaseInstance
// reports false for objects the asset system did not create.
type Releaser interface {
	ReleaseInstance(h host.Handle) bool
}

// AddressLoader instantiates the asset registered at Address.
type AddressLoader struct {
	Catalog Catalog
	Address string
}

// Load implements Loader.
func (l AddressLoader) Load(ctx context.Context) (host.Handle, error) {
	if l.Catalog == nil || l.Address == "" {
		return 0, errors.New(errors.ErrorTypeConfig, "address loader requires a catalog and an address")
	}
	return l.Catalog.Instantiate(ctx, l.Address)
}

// ReferenceLoader instantiates Ref.
type ReferenceLoader struct {
	Ref Reference
}

// Load implements Loader.
func (l ReferenceLoader) Load(ctx context.Context) (host.Handle, error) {
	if l.Ref == nil {
		return 0, errors.New(errors.ErrorTypeConfig, "reference loader requires a reference")
	}
	return l.Ref.Instantiate(ctx)
}
