package repository

import (
	"context"
	"errors"
	"fmt"
	"gsapp-backend/internal/cache"
	"gsapp-backend/internal/fetcher"
	"gsapp-backend/internal/model"
	"gsapp-backend/internal/scrapers/gsweb"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testPlan = model.SubstitutionSet{
	Date:  "Montag, 16.10.2023",
	Notes: "Wandertag",
	Substitutions: []model.Substitution{
		model.NewSubstitution([7]string{"5.3", "3", "En", "KOC", "L01", "De", ""}, false),
		model.NewSubstitution([7]string{"10.1", "5", "Ma", "Herr Schmidt", "104", "xyz", "Aufgaben"}, true),
	},
}

var errOffline = &fetcher.TransportError{Url: "https://example.test", Cause: errors.New("offline")}

func TestStreamCacheMiss(t *testing.T) {
	repo, store, _ := setup(t, &fakeRemote{substitutions: testPlan})

	results := collect(repo.Substitutions(context.Background()))
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Equal(t, SourceRemote, results[0].Source)
	if diff := cmp.Diff(testPlan, results[0].Value); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, 1, store.Writes(cache.KindSubstitutions))

	cached, err := cache.Load[model.SubstitutionSet](context.Background(), store, cache.KindSubstitutions)
	require.NoError(t, err)
	require.True(t, cmp.Equal(testPlan, cached))
}

func TestStreamUnchangedValueIsNotWritten(t *testing.T) {
	repo, store, _ := setup(t, &fakeRemote{substitutions: testPlan})
	store.seed(t, cache.KindSubstitutions, testPlan)

	results := collect(repo.Substitutions(context.Background()))
	require.Len(t, results, 1)
	require.Equal(t, SourceCache, results[0].Source)
	require.Equal(t, 0, store.Writes(cache.KindSubstitutions))
}

func TestStreamChangedValue(t *testing.T) {
	repo, store, _ := setup(t, &fakeRemote{substitutions: testPlan})
	stale := model.SubstitutionSet{Date: "Freitag, 13.10.2023"}
	store.seed(t, cache.KindSubstitutions, stale)

	results := collect(repo.Substitutions(context.Background()))
	require.Len(t, results, 2)
	require.Equal(t, SourceCache, results[0].Source)
	require.Equal(t, stale.Date, results[0].Value.Date)
	require.Equal(t, SourceRemote, results[1].Source)
	require.Equal(t, testPlan.Date, results[1].Value.Date)
	require.Equal(t, 1, store.Writes(cache.KindSubstitutions))
}

func TestStreamFetchFailsWithCache(t *testing.T) {
	repo, store, tel := setup(t, &fakeRemote{substitutionsErr: errOffline})
	store.seed(t, cache.KindSubstitutions, testPlan)

	results := collect(repo.Substitutions(context.Background()))
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Equal(t, SourceCache, results[0].Source)
	require.Equal(t, 0, store.Writes(cache.KindSubstitutions))
	require.Empty(t, tel.Reports("broken", ""))
}

func TestStreamFetchFailsWithoutCache(t *testing.T) {
	repo, store, _ := setup(t, &fakeRemote{subjectsErr: errOffline})

	results := collect(repo.Subjects(context.Background()))
	require.Len(t, results, 1)

	var transportErr *fetcher.TransportError
	require.ErrorAs(t, results[0].Err, &transportErr)
	require.Equal(t, 0, store.Writes(cache.KindSubjects))
}

func TestStreamUndecodableCacheIsAMiss(t *testing.T) {
	repo, store, _ := setup(t, &fakeRemote{subjects: gsweb.SeedSubjects()})
	// an object does not decode as a subject list
	store.seed(t, cache.KindSubjects, map[string]int{"De": 1})

	results := collect(repo.Subjects(context.Background()))
	require.Len(t, results, 1)
	require.Equal(t, SourceRemote, results[0].Source)
	require.Equal(t, 1, store.Writes(cache.KindSubjects))
}

func TestStreamHolidayIsSurfaced(t *testing.T) {
	repo, store, _ := setup(t, &fakeRemote{
		substitutionsErr: &gsweb.HolidayError{Date: "Beschilderung beachten!"},
	})
	store.seed(t, cache.KindSubstitutions, testPlan)

	results := collect(repo.Substitutions(context.Background()))
	require.Len(t, results, 2)
	require.Equal(t, SourceCache, results[0].Source)
	require.True(t, gsweb.IsHoliday(results[1].Err))
}

func TestStreamCanceled(t *testing.T) {
	remote := &fakeRemote{substitutions: testPlan}
	repo, _, _ := setup(t, remote)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for res := range repo.Substitutions(ctx) {
		require.ErrorIs(t, res.Err, context.Canceled)
	}
	require.Zero(t, remote.fetches.Load())
}

func TestTeachersMergeDisjoint(t *testing.T) {
	remoteTeachers := []model.Teacher{
		{ShortName: "MUS", LongName: "Herr Max Mustermann"},
		{ShortName: "KOC", LongName: "Frau Erika Koch"},
	}
	cachedTeachers := []model.Teacher{
		{ShortName: "LOK", LongName: "Lokal Angelegt"},
	}

	repo, store, _ := setup(t, &fakeRemote{teachers: gsweb.StaffDirectory{Teachers: remoteTeachers}})
	store.seed(t, cache.KindTeachers, cachedTeachers)

	results := collect(repo.Teachers(context.Background()))
	require.Len(t, results, 2)

	merged := results[1].Value
	require.Len(t, merged, len(remoteTeachers)+len(cachedTeachers))
	require.Equal(t, remoteTeachers, merged[:len(remoteTeachers)])
	require.Equal(t, cachedTeachers, merged[len(remoteTeachers):])

	// a second cycle merges to the same list and does not write again
	results = collect(repo.Teachers(context.Background()))
	require.Len(t, results, 1)
	require.Equal(t, merged, results[0].Value)
	require.Equal(t, 1, store.Writes(cache.KindTeachers))
}

func TestTeacherUpdateSurvivesRefresh(t *testing.T) {
	ctx := context.Background()
	koch := model.Teacher{ShortName: "KOC", LongName: "Frau Erika Koch"}
	repo, store, _ := setup(t, &fakeRemote{teachers: gsweb.StaffDirectory{Teachers: []model.Teacher{koch}}})

	_, ok := Last(repo.Teachers(ctx))
	require.True(t, ok)

	renamed := model.Teacher{ShortName: "KOC", LongName: "Frau Dr. Erika Koch"}
	require.NoError(t, repo.UpdateTeacher(ctx, koch, renamed))

	last, ok := Last(repo.Teachers(ctx))
	require.True(t, ok)
	require.NoError(t, last.Err)
	require.Contains(t, last.Value, renamed)

	teachers, err := cache.Load[[]model.Teacher](ctx, store, cache.KindTeachers)
	require.NoError(t, err)
	require.Equal(t, []model.Teacher{koch, renamed}, teachers)

	// further cycles keep the same list
	results := collect(repo.Teachers(ctx))
	require.Len(t, results, 1)
	require.Equal(t, teachers, results[0].Value)
}

func TestTeachersPartialDirectory(t *testing.T) {
	repo, _, tel := setup(t, &fakeRemote{teachers: gsweb.StaffDirectory{
		Teachers:    []model.Teacher{{ShortName: "MUS", LongName: "Herr Max Mustermann"}},
		FailedPages: []int{3},
		Partial:     true,
	}})

	results := collect(repo.Teachers(context.Background()))
	require.Len(t, results, 1)
	require.Len(t, results[0].Value, 1)
	require.Len(t, tel.Reports("warning", report_teachers_partial), 1)
}

func TestMergeTeachers(t *testing.T) {
	remote := []model.Teacher{
		{ShortName: "KOC", LongName: "Frau Erika Koch"},
	}
	cached := []model.Teacher{
		{ShortName: "KOC", LongName: "Frau Erika Koch"},
		{ShortName: "koc", LongName: "Frau Dr. Erika Koch"},
		{ShortName: "NEU", LongName: "Neu"},
	}

	merged := MergeTeachers(remote, cached)
	require.Equal(t, []model.Teacher{
		{ShortName: "KOC", LongName: "Frau Erika Koch"},
		{ShortName: "koc", LongName: "Frau Dr. Erika Koch"},
		{ShortName: "NEU", LongName: "Neu"},
	}, merged)

	require.Empty(t, MergeTeachers(nil, nil))
}

func TestResolve(t *testing.T) {
	subjects := []model.Subject{
		{ShortName: "EN", LongName: "Englisch", Color: 0xFFFF9800},
		{ShortName: "De", LongName: "Deutsch", Color: 0xFF2196F3},
		{ShortName: "Ma", LongName: "Mathe", Color: 0xFFF44336},
	}
	teachers := []model.Teacher{
		{ShortName: "koc", LongName: "Frau Erika Koch"},
	}

	display := Resolve(testPlan, subjects, teachers)
	require.Equal(t, testPlan.Date, display.Date)
	require.Equal(t, testPlan.Notes, display.Notes)
	require.Len(t, display.Substitutions, 2)

	first := display.Substitutions[0]
	require.Equal(t, testPlan.Substitutions[0], first.Substitution)
	require.Equal(t, "Englisch", first.OrigSubject.LongName)
	require.Equal(t, "Deutsch", first.SubstSubject.LongName)
	require.Equal(t, "Frau Erika Koch", first.SubstTeacher.LongName)

	// unmatched codes resolve to placeholders carrying the raw code
	second := display.Substitutions[1]
	require.Equal(t, "Mathe", second.OrigSubject.LongName)
	require.Equal(t, model.PlaceholderSubject("xyz"), second.SubstSubject)
	require.Equal(t, "xyz", second.SubstSubject.ShortName)
	require.Equal(t, "xyz", second.SubstSubject.LongName)
	require.Equal(t, model.PlaceholderTeacher("Herr Schmidt"), second.SubstTeacher)
}

func TestDisplay(t *testing.T) {
	repo, _, _ := setup(t, &fakeRemote{
		substitutions: testPlan,
		subjects:      gsweb.SeedSubjects(),
		teachers: gsweb.StaffDirectory{Teachers: []model.Teacher{
			{ShortName: "KOC", LongName: "Frau Erika Koch"},
		}},
	})

	results := collect(repo.Display(context.Background()))
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	first := results[0].Value.Substitutions[0]
	require.Equal(t, "Englisch", first.OrigSubject.LongName)
	require.Equal(t, "Frau Erika Koch", first.SubstTeacher.LongName)
}

func TestDisplayWithCachedValues(t *testing.T) {
	repo, store, _ := setup(t, &fakeRemote{
		substitutions: testPlan,
		subjects:      gsweb.SeedSubjects(),
		teachers:      gsweb.StaffDirectory{Teachers: []model.Teacher{{ShortName: "KOC", LongName: "Frau Erika Koch"}}},
	})
	store.seed(t, cache.KindSubstitutions, model.SubstitutionSet{Date: "alt"})
	store.seed(t, cache.KindSubjects, gsweb.SeedSubjects())
	store.seed(t, cache.KindTeachers, []model.Teacher{{ShortName: "KOC", LongName: "Frau Erika Koch"}})

	results := collect(repo.Display(context.Background()))
	require.NotEmpty(t, results)
	require.LessOrEqual(t, len(results), displayBuffer)

	last := results[len(results)-1]
	require.NoError(t, last.Err)
	require.Equal(t, testPlan.Date, last.Value.Date)
}

func TestDisplayDictionaryFailure(t *testing.T) {
	repo, _, _ := setup(t, &fakeRemote{
		substitutions: testPlan,
		subjectsErr:   errOffline,
		teachersErr:   errOffline,
	})

	results := collect(repo.Display(context.Background()))
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	first := results[0].Value.Substitutions[0]
	require.Equal(t, model.PlaceholderSubject("En"), first.OrigSubject)
	require.Equal(t, model.PlaceholderTeacher("KOC"), first.SubstTeacher)
}

func TestDisplayPlanFailure(t *testing.T) {
	repo, _, _ := setup(t, &fakeRemote{
		substitutionsErr: &gsweb.NoEntriesError{},
		subjects:         gsweb.SeedSubjects(),
	})

	results := collect(repo.Display(context.Background()))
	require.Len(t, results, 1)
	require.True(t, gsweb.IsNoEntries(results[0].Err))
}

func TestSubjectByShort(t *testing.T) {
	repo, _, _ := setup(t, &fakeRemote{subjects: gsweb.SeedSubjects()})

	subject, found, err := repo.SubjectByShort(context.Background(), "ma")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Mathe", subject.LongName)

	subject, found, err = repo.SubjectByShort(context.Background(), "Xy")
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, model.PlaceholderSubject("Xy"), subject)
}

func TestTeacherByShortMatchLikePlaceholder(t *testing.T) {
	// a directory entry without a long name looks like a placeholder
	entry := model.Teacher{ShortName: "KOC", LongName: "KOC"}
	repo, _, _ := setup(t, &fakeRemote{teachers: gsweb.StaffDirectory{Teachers: []model.Teacher{entry}}})

	teacher, found, err := repo.TeacherByShort(context.Background(), "koc")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, entry, teacher)

	_, found, err = repo.TeacherByShort(context.Background(), "XYZ")
	require.NoError(t, err)
	require.False(t, found)
}

func TestTeacherByShortFailure(t *testing.T) {
	repo, _, _ := setup(t, &fakeRemote{teachersErr: errOffline})

	teacher, found, err := repo.TeacherByShort(context.Background(), "KOC")
	require.Error(t, err)
	require.False(t, found)
	require.Equal(t, model.PlaceholderTeacher("KOC"), teacher)
}

func TestRefreshAll(t *testing.T) {
	remote := &fakeRemote{
		substitutions: testPlan,
		subjects:      gsweb.SeedSubjects(),
		teachers:      gsweb.StaffDirectory{Teachers: []model.Teacher{{ShortName: "KOC", LongName: "Frau Erika Koch"}}},
		foodPlanErr:   fmt.Errorf("food plan: %w", gsweb.ErrNotSupported),
	}
	repo, _, _ := setup(t, remote)

	snapshot, err := repo.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(5), remote.fetches.Load())

	require.NoError(t, snapshot.Substitutions.Err)
	require.Len(t, snapshot.Substitutions.Value.Substitutions, 2)
	require.NoError(t, snapshot.Subjects.Err)
	require.NoError(t, snapshot.Teachers.Err)
	require.ErrorIs(t, snapshot.FoodPlan.Err, gsweb.ErrNotSupported)
	require.ErrorIs(t, snapshot.Additives.Err, gsweb.ErrNotSupported)
}

func TestTeacherEdits(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := setup(t, &fakeRemote{})

	koch := model.Teacher{ShortName: "KOC", LongName: "Frau Erika Koch"}
	weber := model.Teacher{ShortName: "WEB", LongName: "Herr Jonas Weber"}

	require.NoError(t, repo.AddTeacher(ctx, koch))
	require.NoError(t, repo.AddTeacher(ctx, weber))

	renamed := model.Teacher{ShortName: "KOC", LongName: "Frau Dr. Erika Koch"}
	require.NoError(t, repo.UpdateTeacher(ctx, koch, renamed))

	teachers, err := cache.Load[[]model.Teacher](ctx, store, cache.KindTeachers)
	require.NoError(t, err)
	require.Equal(t, []model.Teacher{renamed, weber}, teachers)

	require.NoError(t, repo.DeleteTeacher(ctx, weber))
	teachers, err = cache.Load[[]model.Teacher](ctx, store, cache.KindTeachers)
	require.NoError(t, err)
	require.Equal(t, []model.Teacher{renamed}, teachers)
}

func TestEditMissingTarget(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := setup(t, &fakeRemote{})

	biology := model.Subject{ShortName: "Bi", LongName: "Biologie", Color: 0xFF4CAF50}
	require.NoError(t, repo.AddSubject(ctx, biology))
	writes := store.Writes(cache.KindSubjects)

	err := repo.UpdateSubject(ctx, model.Subject{ShortName: "Xx"}, biology)
	require.ErrorIs(t, err, ErrNotFound)

	err = repo.DeleteTeacher(ctx, model.Teacher{ShortName: "KOC"})
	require.ErrorIs(t, err, ErrNotFound)

	// failed edits leave the cache untouched
	require.Equal(t, writes, store.Writes(cache.KindSubjects))
	require.Equal(t, 0, store.Writes(cache.KindTeachers))

	require.NoError(t, repo.DeleteSubject(ctx, biology))
	subjects, err := cache.Load[[]model.Subject](ctx, store, cache.KindSubjects)
	require.NoError(t, err)
	require.Empty(t, subjects)
}

func TestEditUndecodableCache(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := setup(t, &fakeRemote{})
	store.seed(t, cache.KindTeachers, map[string]int{"KOC": 1})

	err := repo.AddTeacher(ctx, model.Teacher{ShortName: "NEU", LongName: "Neu"})
	var decode *cache.DecodeError
	require.ErrorAs(t, err, &decode)
	require.Equal(t, 0, store.Writes(cache.KindTeachers))

	var raw map[string]int
	require.NoError(t, store.Load(ctx, cache.KindTeachers, &raw))
	require.Equal(t, map[string]int{"KOC": 1}, raw)
}

func TestEditsNeverFetch(t *testing.T) {
	remote := &fakeRemote{}
	repo, _, _ := setup(t, remote)

	require.NoError(t, repo.AddSubject(context.Background(), model.Subject{ShortName: "Ph"}))
	require.Zero(t, remote.fetches.Load())
}

func TestConcurrentEditsAreSerialized(t *testing.T) {
	repo, store, _ := setup(t, &fakeRemote{})

	const editors = 16
	errs := make(chan error, editors)
	var wg sync.WaitGroup
	for i := 0; i < editors; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.AddTeacher(context.Background(), model.Teacher{
				ShortName: fmt.Sprintf("T%02d", i),
				LongName:  fmt.Sprintf("Teacher %d", i),
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	teachers, err := cache.Load[[]model.Teacher](context.Background(), store, cache.KindTeachers)
	require.NoError(t, err)
	require.Len(t, teachers, editors)
}
