package repository

import (
	"context"
	"fmt"
	"gsapp-backend/internal/cache"
	"gsapp-backend/internal/model"
	"gsapp-backend/internal/scrapers/gsweb"
)

// Substitutions streams the substitution plan. Holidays and empty plans are
// emitted as errors even when a cached plan was emitted before.
func (r *Repository) Substitutions(ctx context.Context) <-chan Result[model.SubstitutionSet] {
	return openStream(ctx, r, streamSpec[model.SubstitutionSet]{
		kind:  cache.KindSubstitutions,
		fetch: r.remote.LoadSubstitutionPlan,
		surface: func(err error) bool {
			return gsweb.IsHoliday(err) || gsweb.IsNoEntries(err)
		},
	})
}

func (r *Repository) Subjects(ctx context.Context) <-chan Result[[]model.Subject] {
	return openStream(ctx, r, streamSpec[[]model.Subject]{
		kind:  cache.KindSubjects,
		fetch: r.remote.LoadSubjects,
	})
}

// Teachers streams the staff directory merged with the cached list, so
// teachers added locally survive a refresh.
func (r *Repository) Teachers(ctx context.Context) <-chan Result[[]model.Teacher] {
	return openStream(ctx, r, streamSpec[[]model.Teacher]{
		kind: cache.KindTeachers,
		fetch: func(ctx context.Context) ([]model.Teacher, error) {
			directory, err := r.remote.LoadTeachers(ctx)
			if err != nil {
				return nil, err
			}
			if directory.Partial {
				r.tel.ReportWarning(
					report_teachers_partial,
					fmt.Errorf("staff directory is incomplete, failed pages: %v", directory.FailedPages),
				)
			}
			return directory.Teachers, nil
		},
		merge: MergeTeachers,
	})
}

func (r *Repository) FoodPlan(ctx context.Context) <-chan Result[[]model.FoodOffer] {
	return openStream(ctx, r, streamSpec[[]model.FoodOffer]{
		kind:  cache.KindFoodPlan,
		fetch: r.remote.LoadFoodPlan,
	})
}

func (r *Repository) Additives(ctx context.Context) <-chan Result[[]model.Additive] {
	return openStream(ctx, r, streamSpec[[]model.Additive]{
		kind:  cache.KindAdditives,
		fetch: r.remote.LoadAdditives,
	})
}

// MergeTeachers returns the remote list followed by the cached teachers that
// are not identical to a remote one. Cached entries edited locally are kept
// next to the remote entry with the same short code.
func MergeTeachers(remote, cached []model.Teacher) []model.Teacher {
	known := make(map[model.Teacher]struct{}, len(remote))
	for _, t := range remote {
		known[t] = struct{}{}
	}

	merged := make([]model.Teacher, 0, len(remote)+len(cached))
	merged = append(merged, remote...)
	for _, t := range cached {
		if _, ok := known[t]; ok {
			continue
		}
		merged = append(merged, t)
	}
	return merged
}
