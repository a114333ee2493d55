// Package model contains the records scraped from the school website and the
// display records derived from them.
package model

import "time"

// Substitution is a single timetable change, one affected lesson for one class.
type Substitution struct {
	Class             string `json:"class"`
	LessonNumber      string `json:"lesson_number"`
	OriginalSubject   string `json:"original_subject"`
	SubstituteTeacher string `json:"substitute_teacher"`
	SubstituteRoom    string `json:"substitute_room"`
	SubstituteSubject string `json:"substitute_subject"`
	Notes             string `json:"notes"`
	IsNew             bool   `json:"is_new"`
}

// SubstitutionFieldCount is the number of text fields of a Substitution, one
// per table column of the plan.
const SubstitutionFieldCount = 7

// NewSubstitution builds a Substitution from the 7 columns of a plan row in
// document order.
func NewSubstitution(fields [SubstitutionFieldCount]string, isNew bool) Substitution {
	return Substitution{
		Class:             fields[0],
		LessonNumber:      fields[1],
		OriginalSubject:   fields[2],
		SubstituteTeacher: fields[3],
		SubstituteRoom:    fields[4],
		SubstituteSubject: fields[5],
		Notes:             fields[6],
		IsNew:             isNew,
	}
}

// Fields returns the text fields in column order.
func (s Substitution) Fields() [SubstitutionFieldCount]string {
	return [SubstitutionFieldCount]string{
		s.Class,
		s.LessonNumber,
		s.OriginalSubject,
		s.SubstituteTeacher,
		s.SubstituteRoom,
		s.SubstituteSubject,
		s.Notes,
	}
}

// SubstitutionSet is one published plan. Date is display text and may be a
// placeholder.
type SubstitutionSet struct {
	Date          string         `json:"date"`
	Notes         string         `json:"notes"`
	Substitutions []Substitution `json:"substitutions"`
}

// Color is an ARGB color.
type Color uint32

const DefaultSubjectColor Color = 0xFFFF00FF

type Subject struct {
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
	Color     Color  `json:"color"`
}

// PlaceholderSubject stands in for a code without a dictionary entry.
func PlaceholderSubject(code string) Subject {
	return Subject{ShortName: code, LongName: code, Color: DefaultSubjectColor}
}

type Teacher struct {
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
}

// PlaceholderTeacher stands in for a code or free-text name without a
// directory entry.
func PlaceholderTeacher(code string) Teacher {
	return Teacher{ShortName: code, LongName: code}
}

type Food struct {
	MealSlot  int      `json:"meal_slot"`
	Name      string   `json:"name"`
	Additives []string `json:"additives"`
}

// FoodOffer holds the meals of a single day together with the bounds of the
// week the menu was published for.
type FoodOffer struct {
	Date     time.Time `json:"date"`
	FromDate time.Time `json:"from_date"`
	TillDate time.Time `json:"till_date"`
	Foods    []Food    `json:"foods"`
}

type Additive struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SubstitutionDisplay is a Substitution with its codes resolved against the
// subject and teacher dictionaries, it is never persisted.
type SubstitutionDisplay struct {
	Substitution Substitution
	OrigSubject  Subject
	SubstTeacher Teacher
	SubstSubject Subject
}

type SubstitutionDisplaySet struct {
	Date          string
	Notes         string
	Substitutions []SubstitutionDisplay
}
