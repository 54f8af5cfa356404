package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/repository"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, anon_name, bio, gender, age, location, interests, answers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.UserID, profile.AnonName, profile.Bio, profile.Gender,
		profile.Age, profile.Location, profile.Interests, profile.Answers,
	)
	return err
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	query := `
		SELECT user_id, anon_name, bio, gender, age, location, interests, answers
		FROM profiles WHERE user_id = $1
	`
	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET anon_name = $1, bio = $2, gender = $3, age = $4,
		    location = $5, interests = $6, answers = $7
		WHERE user_id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		profile.AnonName, profile.Bio, profile.Gender, profile.Age,
		profile.Location, profile.Interests, profile.Answers, profile.UserID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) SaveAnswers(ctx context.Context, userID string, answers domain.AnswerMap) error {
	query := `UPDATE profiles SET answers = $1 WHERE user_id = $2`
	result, err := r.db.ExecContext(ctx, query, answers, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) ListExcept(ctx context.Context, userID string) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	query := `
		SELECT user_id, anon_name, bio, gender, age, location, interests, answers
		FROM profiles WHERE user_id != $1
	`
	err := r.db.SelectContext(ctx, &profiles, query, userID)
	return profiles, err
}
