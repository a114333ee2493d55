// Package repository reconciles the cached copy of every entity kind with the
// school website. Every stream first emits the cached value, then the remote
// value when it differs.
package repository

import (
	"context"
	"errors"
	"fmt"
	"gsapp-backend/internal/cache"
	"gsapp-backend/internal/components/assert"
	"gsapp-backend/internal/components/telemetry"
	"gsapp-backend/internal/model"
	"gsapp-backend/internal/scrapers/gsweb"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const (
	report_stream_cache_load  = "stream.cache-load"
	report_stream_cache_store = "stream.cache-store"
	report_stream_fetch       = "stream.fetch"
	report_teachers_partial   = "teachers.partial"
)

// streamBuffer is the number of values a stream emits per cycle at most, the
// channel never blocks the producer.
const streamBuffer = 2

// ErrNotFound is returned when a local edit targets a value that is not in
// the cached collection.
var ErrNotFound = errors.New("value not found in cache")

// Remote is the upstream source of every entity kind.
type Remote interface {
	LoadSubstitutionPlan(ctx context.Context) (model.SubstitutionSet, error)
	LoadSubjects(ctx context.Context) ([]model.Subject, error)
	LoadTeachers(ctx context.Context) (gsweb.StaffDirectory, error)
	LoadFoodPlan(ctx context.Context) ([]model.FoodOffer, error)
	LoadAdditives(ctx context.Context) ([]model.Additive, error)
}

type Origin int

const (
	SourceCache Origin = iota + 1
	SourceRemote
)

func (o Origin) String() string {
	switch o {
	case SourceCache:
		return "cache"
	case SourceRemote:
		return "remote"
	}
	return "unknown"
}

// Result is a single emission of a stream. Err is set when the value could
// neither be loaded from the cache nor fetched.
type Result[T any] struct {
	Value  T
	Err    error
	Source Origin
}

type Repository struct {
	remote Remote
	store  cache.Store
	tel    telemetry.API
	// one exclusive token per kind, held for a whole stream cycle or edit
	tokens map[cache.Kind]chan struct{}
}

func New(remote Remote, store cache.Store, tel telemetry.API) *Repository {
	assert.NotNil(remote)
	assert.NotNil(store)
	assert.NotNil(tel)

	tokens := make(map[cache.Kind]chan struct{}, len(cache.Kinds))
	for _, kind := range cache.Kinds {
		tokens[kind] = make(chan struct{}, 1)
	}

	return &Repository{
		remote: remote,
		store:  store,
		tel:    telemetry.NewScopedAPI("repository", tel),
		tokens: tokens,
	}
}

func (r *Repository) acquire(ctx context.Context, kind cache.Kind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case r.tokens[kind] <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Repository) release(kind cache.Kind) {
	<-r.tokens[kind]
}

var equalOpts = []cmp.Option{cmpopts.EquateEmpty()}

type streamSpec[T any] struct {
	kind  cache.Kind
	fetch func(ctx context.Context) (T, error)
	// merge combines the fresh value with the cached one before it is
	// compared and stored, nil means the fresh value replaces the cache
	merge func(fresh, cached T) T
	// surface reports fetch errors that are emitted even after the cached
	// value was, because they describe the current state rather than a
	// failure
	surface func(err error) bool
}

func openStream[T any](ctx context.Context, r *Repository, spec streamSpec[T]) <-chan Result[T] {
	out := make(chan Result[T], streamBuffer)
	go func() {
		defer close(out)
		emit := func(res Result[T]) {
			select {
			case out <- res:
			case <-ctx.Done():
			}
		}

		err := r.acquire(ctx, spec.kind)
		if err != nil {
			emit(Result[T]{Err: err})
			return
		}
		defer r.release(spec.kind)

		cached, cacheErr := cache.Load[T](ctx, r.store, spec.kind)
		if cacheErr != nil && !cache.IsMiss(cacheErr) {
			r.tel.ReportWarning(report_stream_cache_load, cacheErr, spec.kind)
		}
		cacheOk := cacheErr == nil
		if cacheOk {
			emit(Result[T]{Value: cached, Source: SourceCache})
		}

		fresh, err := spec.fetch(ctx)
		if err != nil {
			if !cacheOk || (spec.surface != nil && spec.surface(err)) {
				emit(Result[T]{Err: err, Source: SourceRemote})
				return
			}
			r.tel.ReportWarning(report_stream_fetch, fmt.Errorf("keeping cached %s: %w", spec.kind, err))
			return
		}

		if cacheOk && spec.merge != nil {
			fresh = spec.merge(fresh, cached)
		}
		if cacheOk && cmp.Equal(fresh, cached, equalOpts...) {
			r.tel.ReportDebug("cached value is current", spec.kind)
			return
		}

		err = r.store.Store(ctx, spec.kind, fresh)
		if err != nil {
			r.tel.ReportBroken(report_stream_cache_store, err, spec.kind)
		}
		emit(Result[T]{Value: fresh, Source: SourceRemote})
	}()
	return out
}

// Last drains a stream and returns its final emission.
func Last[T any](ch <-chan Result[T]) (Result[T], bool) {
	var last Result[T]
	ok := false
	for res := range ch {
		last = res
		ok = true
	}
	return last, ok
}
