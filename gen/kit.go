package gen

import (
	"reflect"
	"slices"

	"github.com/cockroachdb/errors"

	"blop/internal/engine"
	"blop/list"
	"blop/policy"
	"blop/vector"
)

// Option is a construction option shared by lists and vectors.
type Option = engine.Option

// Kit builds containers of one (T, P) pair. It holds only immutable
// configuration, so containers from two kits never share state.
type Kit[T any, P policy.Policy] struct {
	key      Key
	cfg      policy.Config
	defaults []Option
}

// Instantiate records (T, P) in Default and returns its Kit. opts become the
// defaults of every container the kit builds.
func Instantiate[T any, P policy.Policy](opts ...Option) (*Kit[T, P], error) {
	return instantiate[T, P](Default, engine.Site(1), opts)
}

// In is Instantiate against an explicit registry.
func In[T any, P policy.Policy](r *Registry, opts ...Option) (*Kit[T, P], error) {
	return instantiate[T, P](r, engine.Site(1), opts)
}

func instantiate[T any, P policy.Policy](r *Registry, site string, opts []Option) (*Kit[T, P], error) {
	cfg := policy.Of[P]()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "instantiate %s", TypeName[P]())
	}
	s := engine.Apply(nil, opts)
	if s.HasSentinel {
		if _, ok := s.Sentinel.(T); !ok {
			return nil, errors.Wrapf(policy.ErrSentinelType, "instantiate %s: sentinel is %T, want %s",
				TypeName[P](), s.Sentinel, TypeName[T]())
		}
	}
	k := &Kit[T, P]{
		key:      Key{Elem: TypeName[T](), Policy: cfg.Key()},
		cfg:      cfg,
		defaults: slices.Clone(opts),
	}
	r.Record(k.key, typeName(reflect.TypeFor[P]()), UseSite{Site: site})
	return k, nil
}

// Key returns the registry key of the kit.
func (k *Kit[T, P]) Key() Key { return k.key }

// Config returns the policy values of the kit.
func (k *Kit[T, P]) Config() policy.Config { return k.cfg }

func (k *Kit[T, P]) options(site string, opts []Option) []Option {
	all := make([]Option, 0, len(k.defaults)+len(opts)+1)
	all = append(all, k.defaults...)
	all = append(all, engine.WithSite(site))
	return append(all, opts...)
}

// NewList builds an empty list with the kit's defaults, then opts.
func (k *Kit[T, P]) NewList(opts ...Option) (*list.List[T, P], error) {
	return list.New[T, P](k.options(engine.Site(1), opts)...)
}

// NewVector builds an empty vector with the kit's defaults, then opts.
func (k *Kit[T, P]) NewVector(opts ...Option) (*vector.Vector[T, P], error) {
	return vector.New[T, P](k.options(engine.Site(1), opts)...)
}
