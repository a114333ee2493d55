package repository

import (
	"context"
	"gsapp-backend/internal/model"
	"strings"
)

// displayBuffer bounds the emissions of Display, combining three streams of
// at most two values each yields at most four combined values.
const displayBuffer = 4

// Display combines the latest substitution plan with the latest subject and
// teacher dictionaries. It emits once every stream produced a value and again
// on every later emission. A failed dictionary resolves as an empty one, a
// failed plan is forwarded.
func (r *Repository) Display(ctx context.Context) <-chan Result[model.SubstitutionDisplaySet] {
	out := make(chan Result[model.SubstitutionDisplaySet], displayBuffer)

	substitutions := r.Substitutions(ctx)
	subjects := r.Subjects(ctx)
	teachers := r.Teachers(ctx)

	go func() {
		defer close(out)

		var (
			plan          Result[model.SubstitutionSet]
			subjectList   []model.Subject
			teacherList   []model.Teacher
			hasPlan       bool
			hasSubjects   bool
			hasTeachers   bool
			substitutionC = substitutions
			subjectC      = subjects
			teacherC      = teachers
		)

		for substitutionC != nil || subjectC != nil || teacherC != nil {
			select {
			case res, ok := <-substitutionC:
				if !ok {
					substitutionC = nil
					continue
				}
				plan, hasPlan = res, true
			case res, ok := <-subjectC:
				if !ok {
					subjectC = nil
					continue
				}
				subjectList, hasSubjects = res.Value, true
				if res.Err != nil {
					r.tel.ReportDebug("subjects unavailable, resolving without them", res.Err)
					subjectList = nil
				}
			case res, ok := <-teacherC:
				if !ok {
					teacherC = nil
					continue
				}
				teacherList, hasTeachers = res.Value, true
				if res.Err != nil {
					r.tel.ReportDebug("teachers unavailable, resolving without them", res.Err)
					teacherList = nil
				}
			case <-ctx.Done():
				return
			}

			if !hasPlan || !hasSubjects || !hasTeachers {
				continue
			}

			combined := Result[model.SubstitutionDisplaySet]{
				Err:    plan.Err,
				Source: plan.Source,
			}
			if plan.Err == nil {
				combined.Value = Resolve(plan.Value, subjectList, teacherList)
			}
			select {
			case out <- combined:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func subjectIndex(subjects []model.Subject) map[string]model.Subject {
	index := make(map[string]model.Subject, len(subjects))
	for _, s := range subjects {
		key := strings.ToLower(s.ShortName)
		if _, exists := index[key]; !exists {
			index[key] = s
		}
	}
	return index
}

func teacherIndex(teachers []model.Teacher) map[string]model.Teacher {
	index := make(map[string]model.Teacher, len(teachers))
	for _, t := range teachers {
		key := strings.ToLower(t.ShortName)
		if _, exists := index[key]; !exists {
			index[key] = t
		}
	}
	return index
}

func findSubject(index map[string]model.Subject, code string) (model.Subject, bool) {
	if subject, ok := index[strings.ToLower(code)]; ok {
		return subject, true
	}
	return model.PlaceholderSubject(code), false
}

func findTeacher(index map[string]model.Teacher, code string) (model.Teacher, bool) {
	if teacher, ok := index[strings.ToLower(code)]; ok {
		return teacher, true
	}
	return model.PlaceholderTeacher(code), false
}

func lookupSubject(index map[string]model.Subject, code string) model.Subject {
	subject, _ := findSubject(index, code)
	return subject
}

func lookupTeacher(index map[string]model.Teacher, code string) model.Teacher {
	teacher, _ := findTeacher(index, code)
	return teacher
}

// Resolve joins every substitution with its subjects and teacher. Codes are
// matched exactly ignoring case, codes without a match resolve to a
// placeholder carrying the code.
func Resolve(set model.SubstitutionSet, subjects []model.Subject, teachers []model.Teacher) model.SubstitutionDisplaySet {
	subjectsByCode := subjectIndex(subjects)
	teachersByCode := teacherIndex(teachers)

	display := make([]model.SubstitutionDisplay, len(set.Substitutions))
	for i, s := range set.Substitutions {
		display[i] = model.SubstitutionDisplay{
			Substitution: s,
			OrigSubject:  lookupSubject(subjectsByCode, s.OriginalSubject),
			SubstTeacher: lookupTeacher(teachersByCode, s.SubstituteTeacher),
			SubstSubject: lookupSubject(subjectsByCode, s.SubstituteSubject),
		}
	}

	return model.SubstitutionDisplaySet{
		Date:          set.Date,
		Notes:         set.Notes,
		Substitutions: display,
	}
}

// first returns the first emission of a stream and waits for the rest of the
// cycle so the cache is refreshed before it returns.
func first[T any](ch <-chan Result[T]) (Result[T], bool) {
	res, ok := <-ch
	for range ch {
	}
	return res, ok
}

// SubjectByShort resolves a subject code against the first value of the
// subject stream. A placeholder is returned and found is false when nothing
// matches.
func (r *Repository) SubjectByShort(ctx context.Context, code string) (subject model.Subject, found bool, err error) {
	res, ok := first(r.Subjects(ctx))
	if !ok {
		return model.PlaceholderSubject(code), false, ctx.Err()
	}
	if res.Err != nil {
		return model.PlaceholderSubject(code), false, res.Err
	}
	subject, found = findSubject(subjectIndex(res.Value), code)
	return subject, found, nil
}

// TeacherByShort resolves a teacher code against the first value of the
// teacher stream. A placeholder is returned and found is false when nothing
// matches.
func (r *Repository) TeacherByShort(ctx context.Context, code string) (teacher model.Teacher, found bool, err error) {
	res, ok := first(r.Teachers(ctx))
	if !ok {
		return model.PlaceholderTeacher(code), false, ctx.Err()
	}
	if res.Err != nil {
		return model.PlaceholderTeacher(code), false, res.Err
	}
	teacher, found = findTeacher(teacherIndex(res.Value), code)
	return teacher, found, nil
}
