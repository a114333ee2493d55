package repository

import (
	"context"
	"gsapp-backend/internal/model"

	"golang.org/x/sync/errgroup"
)

// Snapshot holds the final emission of every stream of one refresh cycle.
type Snapshot struct {
	Substitutions Result[model.SubstitutionSet]
	Subjects      Result[[]model.Subject]
	Teachers      Result[[]model.Teacher]
	FoodPlan      Result[[]model.FoodOffer]
	Additives     Result[[]model.Additive]
}

func drainInto[T any](ch <-chan Result[T], dst *Result[T]) func() error {
	return func() error {
		last, _ := Last(ch)
		*dst = last
		return nil
	}
}

// RefreshAll runs one cycle of every stream concurrently and waits for all of
// them to finish.
func (r *Repository) RefreshAll(ctx context.Context) (Snapshot, error) {
	var snapshot Snapshot

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(drainInto(r.Substitutions(groupCtx), &snapshot.Substitutions))
	group.Go(drainInto(r.Subjects(groupCtx), &snapshot.Subjects))
	group.Go(drainInto(r.Teachers(groupCtx), &snapshot.Teachers))
	group.Go(drainInto(r.FoodPlan(groupCtx), &snapshot.FoodPlan))
	group.Go(drainInto(r.Additives(groupCtx), &snapshot.Additives))

	err := group.Wait()
	if err != nil {
		return Snapshot{}, err
	}
	if ctx.Err() != nil {
		return Snapshot{}, ctx.Err()
	}

	for _, res := range []struct {
		name string
		err  error
	}{
		{"substitutions", snapshot.Substitutions.Err},
		{"subjects", snapshot.Subjects.Err},
		{"teachers", snapshot.Teachers.Err},
		{"foodplan", snapshot.FoodPlan.Err},
		{"additives", snapshot.Additives.Err},
	} {
		if res.err != nil {
			r.tel.ReportDebug("refresh finished with error", res.name, res.err)
		}
	}

	return snapshot, nil
}
