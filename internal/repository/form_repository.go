package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
)

const formColumns = `id, user_id, surname, given_names, birth_date, nationality, passport_number,
		education_level, institution, occupation, company, father_name, mother_name, additional_info,
		education, work_history, travel_history, relatives_abroad, family_members,
		is_completed, completed_at, created_at, updated_at`

type FormRepository struct {
	*config.Database
}

func NewFormRepository(database *config.Database) *FormRepository {
	return &FormRepository{database}
}

func (r *FormRepository) GetByUser(ctx context.Context, exec sqlx.ExtContext, userID string) (*model.IntakeForm, error) {
	query := `SELECT ` + formColumns + ` FROM intake_forms WHERE user_id = $1`

	var form model.IntakeForm
	if err := sqlx.GetContext(ctx, exec, &form, query, userID); err != nil {
		return nil, mapError("[FormRepo] get form by user", err)
	}
	return &form, nil
}

func (r *FormRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.IntakeForm, error) {
	query := `SELECT ` + formColumns + ` FROM intake_forms WHERE id = $1`

	var form model.IntakeForm
	if err := sqlx.GetContext(ctx, exec, &form, query, id); err != nil {
		return nil, mapError("[FormRepo] get form", err)
	}
	return &form, nil
}

// Upsert : one form per user. Once submitted a form stays submitted and keeps its first completed_at.
func (r *FormRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, form *model.IntakeForm) (*model.IntakeForm, error) {
	query := `
		INSERT INTO intake_forms (
			id, user_id, surname, given_names, birth_date, nationality, passport_number,
			education_level, institution, occupation, company, father_name, mother_name, additional_info,
			education, work_history, travel_history, relatives_abroad, family_members,
			is_completed, completed_at
		) VALUES (
			:id, :user_id, :surname, :given_names, :birth_date, :nationality, :passport_number,
			:education_level, :institution, :occupation, :company, :father_name, :mother_name, :additional_info,
			:education, :work_history, :travel_history, :relatives_abroad, :family_members,
			:is_completed, CASE WHEN :is_completed THEN NOW() END
		)
		ON CONFLICT (user_id) DO UPDATE SET
			surname = EXCLUDED.surname,
			given_names = EXCLUDED.given_names,
			birth_date = EXCLUDED.birth_date,
			nationality = EXCLUDED.nationality,
			passport_number = EXCLUDED.passport_number,
			education_level = EXCLUDED.education_level,
			institution = EXCLUDED.institution,
			occupation = EXCLUDED.occupation,
			company = EXCLUDED.company,
			father_name = EXCLUDED.father_name,
			mother_name = EXCLUDED.mother_name,
			additional_info = EXCLUDED.additional_info,
			education = EXCLUDED.education,
			work_history = EXCLUDED.work_history,
			travel_history = EXCLUDED.travel_history,
			relatives_abroad = EXCLUDED.relatives_abroad,
			family_members = EXCLUDED.family_members,
			is_completed = intake_forms.is_completed OR EXCLUDED.is_completed,
			completed_at = COALESCE(intake_forms.completed_at, EXCLUDED.completed_at),
			updated_at = NOW()
		RETURNING ` + formColumns

	rows, err := sqlx.NamedQueryContext(ctx, exec, query, form)
	if err != nil {
		return nil, mapError("[FormRepo] upsert form", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, mapError("[FormRepo] upsert form", err)
		}
		return nil, mapError("[FormRepo] upsert form", sql.ErrNoRows)
	}

	var saved model.IntakeForm
	if err := rows.StructScan(&saved); err != nil {
		return nil, mapError("[FormRepo] scan form", err)
	}
	return &saved, nil
}

func (r *FormRepository) List(ctx context.Context, exec sqlx.ExtContext, filter model.IntakeFormFilter) ([]model.IntakeForm, error) {
	query := `SELECT ` + formColumns + ` FROM intake_forms`
	var args []any
	if filter.Completed != nil {
		query += ` WHERE is_completed = $1`
		args = append(args, *filter.Completed)
	}
	query += ` ORDER BY updated_at DESC`

	forms := []model.IntakeForm{}
	if err := sqlx.SelectContext(ctx, exec, &forms, query, args...); err != nil {
		return nil, mapError("[FormRepo] list forms", err)
	}
	return forms, nil
}
