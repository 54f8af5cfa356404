package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/repository"
)

type preferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepository(db *sqlx.DB) repository.PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Create(ctx context.Context, pref *domain.Preference) error {
	query := `
		INSERT INTO preferences (user_id, gender_pref, age_min, age_max, distance_pref)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		pref.UserID, pref.GenderPref, pref.AgeMin, pref.AgeMax, pref.DistancePref,
	)
	return err
}

func (r *preferenceRepository) GetByUserID(ctx context.Context, userID string) (*domain.Preference, error) {
	var pref domain.Preference
	query := `
		SELECT user_id, gender_pref, age_min, age_max, distance_pref
		FROM preferences WHERE user_id = $1
	`
	err := r.db.GetContext(ctx, &pref, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPreferenceNotFound
		}
		return nil, err
	}
	return &pref, nil
}

func (r *preferenceRepository) Update(ctx context.Context, pref *domain.Preference) error {
	query := `
		UPDATE preferences
		SET gender_pref = $1, age_min = $2, age_max = $3, distance_pref = $4
		WHERE user_id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		pref.GenderPref, pref.AgeMin, pref.AgeMax, pref.DistancePref, pref.UserID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrPreferenceNotFound
	}
	return nil
}
