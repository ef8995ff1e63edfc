package provider

import (
	"context"

	"github.com/MimeLyc/artwork-curator/internal/media"
	"github.com/MimeLyc/artwork-curator/pkg/log"
	"golang.org/x/sync/errgroup"
)

const defaultGatherConcurrency = 4

// Registry fans a candidate request out to every registered provider.
// Sources are independent: one failing upstream contributes zero
// candidates and must never sink the whole batch.
type Registry struct {
	providers   []Provider
	concurrency int
}

type RegistryOption func(*Registry)

func WithConcurrency(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func NewRegistry(providers []Provider, opts ...RegistryOption) *Registry {
	r := &Registry{
		providers:   providers,
		concurrency: defaultGatherConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Providers() []Provider {
	return append([]Provider(nil), r.providers...)
}

// Gather queries all providers concurrently and concatenates their
// results in registration order, keeping each provider's own ordering.
// Provider errors are logged and swallowed.
func (r *Registry) Gather(ctx context.Context, item media.Item) []media.Image {
	results := make([][]media.Image, len(r.providers))

	// Plain Group, not WithContext: a failing provider must not cancel
	// its siblings.
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, p := range r.providers {
		i, p := i, p
		g.Go(func() error {
			images, err := p.Images(ctx, item)
			if err != nil {
				log.Warn("provider %s failed for %q: %v", p.Name(), item.Name, err)
				return nil
			}
			results[i] = images
			return nil
		})
	}
	_ = g.Wait()

	ret := make([]media.Image, 0)
	for _, images := range results {
		ret = append(ret, images...)
	}
	return ret
}
