package portal

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"visa-advisory-portal/internal/model"
)

// DateLayout : every date field of the intake form
const DateLayout = "2006-01-02"

const (
	minorAge        = 18
	labelSchool     = "Colegio / Grado"
	labelEmployment = "Empleador / Cargo"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// text : required, at least min characters once surrounding spaces are dropped
func text(min int) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		s = strings.TrimSpace(s)
		if s == "" {
			return validation.ErrRequired
		}
		if utf8.RuneCountInString(s) < min {
			return validation.NewError("validation_length_too_short", "must be at least "+strconv.Itoa(min)+" characters")
		}
		return nil
	})
}

func date() validation.Rule {
	return validation.Date(DateLayout).Error("must be a date in YYYY-MM-DD format")
}

func pastDate(now time.Time) validation.Rule {
	return validation.Date(DateLayout).
		Error("must be a date in YYYY-MM-DD format").
		Max(now).
		RangeError("cannot be in the future")
}

func personalRules(f *model.IntakeForm, now time.Time) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&f.Surname, text(2)),
		validation.Field(&f.GivenNames, text(2)),
		validation.Field(&f.BirthDate, validation.Required, pastDate(now)),
		validation.Field(&f.Nationality, text(1)),
		validation.Field(&f.PassportNumber, text(3)),
	}
}

func educationRules(e *model.EducationEntry, _ time.Time) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&e.Level, text(1)),
		validation.Field(&e.Institution, text(1)),
		validation.Field(&e.StartDate, date()),
		validation.Field(&e.EndDate, date()),
	}
}

func workRules(e *model.WorkEntry, _ time.Time) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&e.Employer, text(1)),
		validation.Field(&e.Position, text(1)),
		validation.Field(&e.StartDate, date()),
		validation.Field(&e.EndDate, date()),
	}
}

func travelRules(e *model.TravelEntry, _ time.Time) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&e.Country, text(1)),
		validation.Field(&e.Year, validation.Required, validation.Match(yearPattern).Error("must be a four digit year")),
		validation.Field(&e.EntryDate, date()),
		validation.Field(&e.ExitDate, date()),
	}
}

func relativeRules(e *model.RelativeEntry, _ time.Time) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&e.FullName, text(1)),
		validation.Field(&e.Relationship, text(1)),
	}
}

func familyMemberRules(e *model.FamilyMember, now time.Time) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&e.FullName, text(1)),
		validation.Field(&e.Relationship, text(1)),
		validation.Field(&e.BirthDate, validation.Required, pastDate(now)),
	}
}

// validateStep : field errors of one step, empty when the step is valid
func validateStep(step Step, f *model.IntakeForm, isFamily bool, now time.Time) map[string]string {
	fields := map[string]string{}

	switch step {
	case StepPersonal:
		collect(fields, "", validation.ValidateStruct(f, personalRules(f, now)...))
	case StepAcademic:
		validateEntries(fields, ListEducation, f.Education, now, educationRules, func(e *model.EducationEntry) period {
			return period{"start_date", e.StartDate, "end_date", e.EndDate}
		})
	case StepWork:
		validateEntries(fields, ListWork, f.WorkHistory, now, workRules, func(e *model.WorkEntry) period {
			return period{"start_date", e.StartDate, "end_date", e.EndDate}
		})
	case StepFamily:
		if isFamily {
			validateEntries(fields, ListFamily, f.FamilyMembers, now, familyMemberRules, nil)
		}
	case StepTravel:
		validateEntries(fields, ListTravel, f.TravelHistory, now, travelRules, func(e *model.TravelEntry) period {
			return period{"entry_date", e.EntryDate, "exit_date", e.ExitDate}
		})
	case StepGeneral:
		validateEntries(fields, ListRelatives, f.RelativesAbroad, now, relativeRules, nil)
	}

	return fields
}

type period struct {
	startKey, start, endKey, end string
}

func validateEntries[T any](
	fields map[string]string,
	list ListName,
	entries []T,
	now time.Time,
	rules func(*T, time.Time) []*validation.FieldRules,
	span func(*T) period,
) {
	for i := range entries {
		entry := &entries[i]
		prefix := entryKey(list, i, "")
		collect(fields, prefix, validation.ValidateStruct(entry, rules(entry, now)...))

		if span == nil {
			continue
		}
		p := span(entry)
		if _, bad := fields[prefix+p.startKey]; bad {
			continue
		}
		if _, bad := fields[prefix+p.endKey]; bad {
			continue
		}
		start, errStart := time.Parse(DateLayout, p.start)
		end, errEnd := time.Parse(DateLayout, p.end)
		if errStart == nil && errEnd == nil && end.Before(start) {
			fields[prefix+p.endKey] = "must not be before " + strings.ReplaceAll(p.startKey, "_", " ")
		}
	}
}

func collect(fields map[string]string, prefix string, err error) {
	if err == nil {
		return
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		fields[strings.TrimSuffix(prefix, ".")] = err.Error()
		return
	}
	for key, fieldErr := range errs {
		fields[prefix+key] = fieldErr.Error()
	}
}

func entryKey(list ListName, index int, field string) string {
	return string(list) + "." + strconv.Itoa(index) + "." + field
}

// AgeInYears : whole calendar years, the birthday counts as a completed year.
// A 29 February birthday completes on 1 March in common years.
func AgeInYears(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// IsMinor : false when the birth date is missing or malformed
func IsMinor(birthDate string, now time.Time) bool {
	birth, err := time.Parse(DateLayout, strings.TrimSpace(birthDate))
	if err != nil {
		return false
	}
	return AgeInYears(birth, now) < minorAge
}

// OccupationLabel : school/grade for minors, employer/role otherwise
func OccupationLabel(member model.FamilyMember, now time.Time) string {
	if IsMinor(member.BirthDate, now) {
		return labelSchool
	}
	return labelEmployment
}
