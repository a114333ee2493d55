// Package cache persists one blob per entity kind so the last known value of
// every collection survives restarts.
package cache

import (
	"context"
	"errors"
	"fmt"
)

// Kind names one cached collection.
type Kind string

const (
	KindSubstitutions Kind = "substitutions"
	KindSubjects      Kind = "subjects"
	KindTeachers      Kind = "teachers"
	KindFoodPlan      Kind = "foodplan"
	KindAdditives     Kind = "additives"
)

var Kinds = []Kind{
	KindSubstitutions,
	KindSubjects,
	KindTeachers,
	KindFoodPlan,
	KindAdditives,
}

// Store holds the encoded value of each kind. Store replaces the whole value,
// a reader never observes a partially written one.
type Store interface {
	Load(ctx context.Context, kind Kind, out any) error
	Store(ctx context.Context, kind Kind, value any) error
	Close() error
}

// NotFoundError means nothing was ever stored for the kind.
type NotFoundError struct {
	Kind Kind
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cache: no value stored for %s", e.Kind)
}

// DecodeError means a stored value exists but cannot be read back.
type DecodeError struct {
	Kind Kind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cache: decode %s: %s", e.Kind, e.Err.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsMiss reports whether err means there is no usable cached value.
func IsMiss(err error) bool {
	var notFound *NotFoundError
	var decode *DecodeError
	return errors.As(err, &notFound) || errors.As(err, &decode)
}

// Load is the typed form of Store.Load.
func Load[T any](ctx context.Context, store Store, kind Kind) (T, error) {
	var out T
	err := store.Load(ctx, kind, &out)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
