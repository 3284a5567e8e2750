package session

import (
	"context"
	"errors"

	"github.com/rgehrsitz/dispo/internal/domain"
)

// Persister sends a change event to the authoritative side. It may return
// the authoritative asset after applying the event; nil means the persister
// has no authoritative view (a stream publisher, for instance).
type Persister interface {
	Persist(ctx context.Context, ev domain.ChangeEvent) (*domain.Asset, error)
}

// PersisterFunc adapts a function to the Persister interface
type PersisterFunc func(ctx context.Context, ev domain.ChangeEvent) (*domain.Asset, error)

func (f PersisterFunc) Persist(ctx context.Context, ev domain.ChangeEvent) (*domain.Asset, error) {
	return f(ctx, ev)
}

// Discard is a persister that accepts everything and returns nothing
var Discard Persister = PersisterFunc(func(context.Context, domain.ChangeEvent) (*domain.Asset, error) {
	return nil, nil
})

type chain []Persister

// Chain fans one event out to several persisters in order. Every persister
// is tried; errors are joined. The first non-nil asset returned wins.
func Chain(persisters ...Persister) Persister {
	out := make(chain, 0, len(persisters))
	for _, p := range persisters {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (c chain) Persist(ctx context.Context, ev domain.ChangeEvent) (*domain.Asset, error) {
	var authoritative *domain.Asset
	var errs []error
	for _, p := range c {
		asset, err := p.Persist(ctx, ev)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if authoritative == nil && asset != nil {
			authoritative = asset
		}
	}
	return authoritative, errors.Join(errs...)
}
