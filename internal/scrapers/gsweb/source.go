// Package gsweb scrapes the substitution plan, the staff directory and the
// cafeteria menu from the school website.
package gsweb

import (
	"context"
	"errors"
	"fmt"
	"gsapp-backend/internal/components/assert"
	"gsapp-backend/internal/components/telemetry"
	"gsapp-backend/internal/fetcher"
	"gsapp-backend/internal/model"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	report_source_load_substitutions = "source.load-substitutions"
	report_source_load_teachers      = "source.load-teachers"
	report_source_load_food_plan     = "source.load-food-plan"
)

// staffPageParallelism bounds the directory pages requested at once.
const staffPageParallelism = 4

// Endpoints are the pages read by Source.
type Endpoints struct {
	Substitutions string `json:"substitutions"`
	Staff         string `json:"staff"`
	// FoodPlan is empty when no cafeteria menu is known.
	FoodPlan string `json:"food_plan"`
}

var DefaultEndpoints = Endpoints{
	Substitutions: "https://www.gymnasium-sonneberg.de/Informationen/vp.php5",
	Staff:         "https://www.gymnasium-sonneberg.de/Kontakt/Sprech/ausgeben.php5",
}

// StaffDirectory is the result of reading every page of the staff directory.
type StaffDirectory struct {
	Teachers []model.Teacher
	// FailedPages lists the pages that could not be fetched or parsed, their
	// teachers are missing from Teachers.
	FailedPages []int
	// Partial is true when FailedPages is not empty or the page count could
	// not be determined.
	Partial bool
}

// Source reads every entity kind from the website.
type Source struct {
	fetcher   fetcher.Fetcher
	endpoints Endpoints
	tel       telemetry.API
}

func NewSource(f fetcher.Fetcher, endpoints Endpoints, tel telemetry.API) Source {
	assert.NotNil(f)
	assert.NotNil(tel)
	assert.NotEmptyStr(endpoints.Substitutions)
	assert.NotEmptyStr(endpoints.Staff)

	return Source{
		fetcher:   f,
		endpoints: endpoints,
		tel:       telemetry.NewScopedAPI("gsweb", tel),
	}
}

func (s Source) LoadSubstitutionPlan(ctx context.Context) (model.SubstitutionSet, error) {
	body, err := s.fetcher.Fetch(ctx, s.endpoints.Substitutions)
	if err != nil {
		return model.SubstitutionSet{}, err
	}

	set, err := ParseSubstitutions(body, s.tel)
	if err != nil {
		if !IsHoliday(err) && !IsNoEntries(err) {
			s.tel.ReportBroken(report_source_load_substitutions, err)
		}
		return model.SubstitutionSet{}, err
	}

	s.tel.ReportCount("substitutions", int64(len(set.Substitutions)))
	return set, nil
}

// LoadSubjects returns the built-in subject dictionary.
func (s Source) LoadSubjects(ctx context.Context) ([]model.Subject, error) {
	return SeedSubjects(), nil
}

// LoadTeachers reads the whole staff directory. Only a failure on the first
// page fails the load, later pages that fail are recorded in the result.
func (s Source) LoadTeachers(ctx context.Context) (StaffDirectory, error) {
	first, err := s.loadStaffPage(ctx, 1)
	if err != nil {
		s.tel.ReportBroken(report_source_load_teachers, fmt.Errorf("page 1: %w", err))
		return StaffDirectory{}, err
	}

	directory := StaffDirectory{}
	if first.PaginationErr != nil {
		s.tel.ReportWarning(report_source_load_teachers, first.PaginationErr)
		directory.Partial = true
	}

	pages := make([][]model.Teacher, first.LastPage)
	pages[0] = first.Teachers

	var failedLock sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(staffPageParallelism)
	for pageNr := 2; pageNr <= first.LastPage; pageNr++ {
		group.Go(func() error {
			page, err := s.loadStaffPage(groupCtx, pageNr)
			if err != nil {
				s.tel.ReportWarning(
					report_source_load_teachers,
					fmt.Errorf("page %d: %w", pageNr, err),
				)
				failedLock.Lock()
				directory.FailedPages = append(directory.FailedPages, pageNr)
				failedLock.Unlock()
				return nil
			}
			pages[pageNr-1] = page.Teachers
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		return StaffDirectory{}, err
	}
	if ctx.Err() != nil {
		return StaffDirectory{}, ctx.Err()
	}

	for _, teachers := range pages {
		directory.Teachers = append(directory.Teachers, teachers...)
	}
	if len(directory.FailedPages) > 0 {
		slices.Sort(directory.FailedPages)
		directory.Partial = true
	}

	s.tel.ReportCount("teachers", int64(len(directory.Teachers)))
	return directory, nil
}

func (s Source) loadStaffPage(ctx context.Context, pageNr int) (StaffPage, error) {
	link, err := staffPageUrl(s.endpoints.Staff, pageNr)
	if err != nil {
		return StaffPage{}, err
	}
	body, err := s.fetcher.Fetch(ctx, link)
	if err != nil {
		return StaffPage{}, err
	}
	return ParseStaffPage(body)
}

func (s Source) LoadFoodPlan(ctx context.Context) ([]model.FoodOffer, error) {
	if s.endpoints.FoodPlan == "" {
		return nil, fmt.Errorf("food plan: no endpoint configured: %w", ErrNotSupported)
	}

	body, err := s.fetcher.Fetch(ctx, s.endpoints.FoodPlan)
	if err != nil {
		return nil, err
	}

	offers, err := ParseFoodPlan(body, s.tel)
	if err != nil {
		s.tel.ReportBroken(report_source_load_food_plan, err)
		return nil, err
	}
	return offers, nil
}

// LoadAdditives always fails, the website does not publish the additive
// dictionary.
func (s Source) LoadAdditives(ctx context.Context) ([]model.Additive, error) {
	return nil, fmt.Errorf("additives: %w", ErrNotSupported)
}

// IsNotSupported reports whether err carries ErrNotSupported.
func IsNotSupported(err error) bool {
	return errors.Is(err, ErrNotSupported)
}
