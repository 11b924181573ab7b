package instance

import (
	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/host"
)

// Factory manufactures objects on behalf of a pool.
type Factory interface {
	CreateInstance() host.Handle
}

// Source is the creation strategy of a Pool. Build one with FromFunc,
// FromTemplate or FromFactory; the zero Source is rejected by NewPool.
type Source struct {
	fn       func() host.Handle
	template host.Handle
	factory  Factory
}

// FromFunc creates objects by calling fn.
func FromFunc(fn func() host.Handle) Source {
	return Source{fn: fn}
}

// FromTemplate creates objects by cloning template. The host must
// implement host.Cloner.
func FromTemplate(template host.Handle) Source {
	return Source{template: template}
}

// FromFactory creates objects through f.
func FromFactory(f Factory) Source {
	return Source{factory: f}
}

func (s Source) kind() string {
	switch {
	case s.fn != nil:
		return "func"
	case s.factory != nil:
		return "factory"
	case s.template.Valid():
		return "template"
	}
	return ""
}

func (s Source) validate(h host.Host) error {
	switch s.kind() {
	case "":
		return errors.New(errors.ErrorTypeConfig, "pool requires an instance source")
	case "template":
		if _, ok := h.(host.Cloner); !ok {
			return errors.New(errors.ErrorTypeConfig, "host cannot clone templates")
		}
	}
	return nil
}

func (s Source) create(h host.Host) host.Handle {
	switch {
	case s.fn != nil:
		return s.fn()
	case s.factory != nil:
		return s.factory.CreateInstance()
	}
	return h.(host.Cloner).Clone(s.template)
}
