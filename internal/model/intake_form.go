package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type EducationEntry struct {
	Level       string `json:"level" yaml:"level"`
	Institution string `json:"institution" yaml:"institution"`
	StartDate   string `json:"start_date" yaml:"start_date"`
	EndDate     string `json:"end_date" yaml:"end_date"`
}

type WorkEntry struct {
	Employer  string `json:"employer" yaml:"employer"`
	Position  string `json:"position" yaml:"position"`
	StartDate string `json:"start_date" yaml:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date"`
}

type TravelEntry struct {
	Country   string `json:"country" yaml:"country"`
	Year      string `json:"year" yaml:"year"`
	Purpose   string `json:"purpose" yaml:"purpose"`
	EntryDate string `json:"entry_date" yaml:"entry_date"`
	ExitDate  string `json:"exit_date" yaml:"exit_date"`
}

type RelativeEntry struct {
	FullName     string `json:"full_name" yaml:"full_name"`
	Relationship string `json:"relationship" yaml:"relationship"`
	Country      string `json:"country" yaml:"country"`
	Address      string `json:"address" yaml:"address"`
}

type FamilyMember struct {
	FullName     string `json:"full_name" yaml:"full_name"`
	Relationship string `json:"relationship" yaml:"relationship"`
	BirthDate    string `json:"birth_date" yaml:"birth_date"`
	Occupation   string `json:"occupation" yaml:"occupation"`
}

// JSONList : ordered list persisted as a JSONB array
type JSONList[T any] []T

func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]T(l))
}

func (l *JSONList[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = JSONList[T]{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsonb list: unsupported type %T", src)
	}

	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// IntakeForm : one questionnaire per user, lists keep insertion order
type IntakeForm struct {
	ID     string `db:"id" json:"id,omitempty" yaml:"-"`
	UserID string `db:"user_id" json:"user_id,omitempty" yaml:"-"`

	Surname        string `db:"surname" json:"surname" yaml:"surname"`
	GivenNames     string `db:"given_names" json:"given_names" yaml:"given_names"`
	BirthDate      string `db:"birth_date" json:"birth_date" yaml:"birth_date"`
	Nationality    string `db:"nationality" json:"nationality" yaml:"nationality"`
	PassportNumber string `db:"passport_number" json:"passport_number" yaml:"passport_number"`

	EducationLevel string `db:"education_level" json:"education_level" yaml:"education_level"`
	Institution    string `db:"institution" json:"institution" yaml:"institution"`
	Occupation     string `db:"occupation" json:"occupation" yaml:"occupation"`
	Company        string `db:"company" json:"company" yaml:"company"`
	FatherName     string `db:"father_name" json:"father_name" yaml:"father_name"`
	MotherName     string `db:"mother_name" json:"mother_name" yaml:"mother_name"`
	AdditionalInfo string `db:"additional_info" json:"additional_info" yaml:"additional_info"`

	Education       JSONList[EducationEntry] `db:"education" json:"education" yaml:"education"`
	WorkHistory     JSONList[WorkEntry]      `db:"work_history" json:"work_history" yaml:"work_history"`
	TravelHistory   JSONList[TravelEntry]    `db:"travel_history" json:"travel_history" yaml:"travel_history"`
	RelativesAbroad JSONList[RelativeEntry]  `db:"relatives_abroad" json:"relatives_abroad" yaml:"relatives_abroad"`
	FamilyMembers   JSONList[FamilyMember]   `db:"family_members" json:"family_members" yaml:"family_members"`

	IsCompleted bool       `db:"is_completed" json:"is_completed" yaml:"-"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty" yaml:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at" yaml:"-"`
}

// IntakeFormFilter : admin listing filter, nil Completed means all
type IntakeFormFilter struct {
	Completed *bool
}
