package repository

import (
	"context"
	"errors"
	"fmt"
	"gsapp-backend/internal/cache"
	"gsapp-backend/internal/model"
	"slices"

	"github.com/google/go-cmp/cmp"
)

// mutateList applies fn to the cached list of the kind and stores the result.
// A missing cache starts from an empty list, an undecodable one fails the edit
// and is left untouched.
func mutateList[T any](ctx context.Context, r *Repository, kind cache.Kind, fn func([]T) ([]T, error)) error {
	err := r.acquire(ctx, kind)
	if err != nil {
		return err
	}
	defer r.release(kind)

	list, err := cache.Load[[]T](ctx, r.store, kind)
	var notFound *cache.NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return err
	}

	list, err = fn(list)
	if err != nil {
		return err
	}

	err = r.store.Store(ctx, kind, list)
	if err != nil {
		r.tel.ReportBroken(report_stream_cache_store, err, kind)
		return err
	}
	return nil
}

func appendValue[T any](value T) func([]T) ([]T, error) {
	return func(list []T) ([]T, error) {
		return append(list, value), nil
	}
}

func replaceValue[T any](old, value T) func([]T) ([]T, error) {
	return func(list []T) ([]T, error) {
		i := slices.IndexFunc(list, func(item T) bool {
			return cmp.Equal(item, old)
		})
		if i < 0 {
			return nil, fmt.Errorf("update %v: %w", old, ErrNotFound)
		}
		list[i] = value
		return list, nil
	}
}

func removeValue[T any](value T) func([]T) ([]T, error) {
	return func(list []T) ([]T, error) {
		i := slices.IndexFunc(list, func(item T) bool {
			return cmp.Equal(item, value)
		})
		if i < 0 {
			return nil, fmt.Errorf("delete %v: %w", value, ErrNotFound)
		}
		return slices.Delete(list, i, i+1), nil
	}
}

func (r *Repository) AddSubject(ctx context.Context, subject model.Subject) error {
	return mutateList(ctx, r, cache.KindSubjects, appendValue(subject))
}

// UpdateSubject replaces the cached subject equal to old.
func (r *Repository) UpdateSubject(ctx context.Context, old, subject model.Subject) error {
	return mutateList(ctx, r, cache.KindSubjects, replaceValue(old, subject))
}

func (r *Repository) DeleteSubject(ctx context.Context, subject model.Subject) error {
	return mutateList(ctx, r, cache.KindSubjects, removeValue(subject))
}

func (r *Repository) AddTeacher(ctx context.Context, teacher model.Teacher) error {
	return mutateList(ctx, r, cache.KindTeachers, appendValue(teacher))
}

// UpdateTeacher replaces the cached teacher equal to old.
func (r *Repository) UpdateTeacher(ctx context.Context, old, teacher model.Teacher) error {
	return mutateList(ctx, r, cache.KindTeachers, replaceValue(old, teacher))
}

func (r *Repository) DeleteTeacher(ctx context.Context, teacher model.Teacher) error {
	return mutateList(ctx, r, cache.KindTeachers, removeValue(teacher))
}
