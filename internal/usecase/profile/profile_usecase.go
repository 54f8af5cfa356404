package profile

import (
	"context"
	"fmt"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/repository"
)

type UseCase struct {
	profileRepo repository.ProfileRepository
	prefRepo    repository.PreferenceRepository
}

func NewUseCase(profileRepo repository.ProfileRepository, prefRepo repository.PreferenceRepository) *UseCase {
	return &UseCase{profileRepo: profileRepo, prefRepo: prefRepo}
}

// PreferenceUpdate carries optional filter changes.
type PreferenceUpdate struct {
	Gender   *string `json:"gender" binding:"omitempty,genderopt"`
	AgeMin   *int    `json:"age_min" binding:"omitempty,min=18,max=120"`
	AgeMax   *int    `json:"age_max" binding:"omitempty,min=18,max=120"`
	Distance *string `json:"distance"`
}

// UpdateRequest is a partial update: nil fields are absent and preserved; a
// non-nil empty string is a real value and overwrites (explicit clear).
type UpdateRequest struct {
	AnonName  *string            `json:"anon_name" binding:"omitempty,min=1,max=100"`
	Bio       *string            `json:"bio"`
	Gender    *string            `json:"gender" binding:"omitempty,genderopt"`
	Age       *int               `json:"age" binding:"omitempty,min=18,max=120"`
	Location  *string            `json:"location"`
	Interests *[]string          `json:"interests" binding:"omitempty,max=20"`
	Answers   *map[string]string `json:"answers"`
	Prefs     *PreferenceUpdate  `json:"preferences"`
}

// View is the merged Profile+Preference response.
type View struct {
	AnonName    string            `json:"anon_name"`
	Bio         *string           `json:"bio"`
	Gender      *string           `json:"gender"`
	Age         *int              `json:"age"`
	Location    *string           `json:"location"`
	Interests   []string          `json:"interests"`
	Answers     map[string]string `json:"answers"`
	Preferences PreferenceView    `json:"preferences"`
}

type PreferenceView struct {
	Gender   string `json:"gender"`
	AgeMin   int    `json:"age_min"`
	AgeMax   int    `json:"age_max"`
	Distance string `json:"distance"`
}

// Get returns the merged profile and preference view.
func (uc *UseCase) Get(ctx context.Context, userID string) (*View, error) {
	prof, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pref, err := uc.prefRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{
		AnonName:  prof.AnonName,
		Bio:       prof.Bio,
		Gender:    prof.Gender,
		Age:       prof.Age,
		Location:  prof.Location,
		Interests: prof.Interests,
		Answers:   prof.Answers,
		Preferences: PreferenceView{
			Gender:   pref.GenderPref,
			AgeMin:   pref.AgeMin,
			AgeMax:   pref.AgeMax,
			Distance: pref.DistancePref,
		},
	}
	if view.Interests == nil {
		view.Interests = []string{}
	}
	if view.Answers == nil {
		view.Answers = map[string]string{}
	}
	return view, nil
}

// Update merges only the provided fields onto the stored records.
func (uc *UseCase) Update(ctx context.Context, userID string, req *UpdateRequest) (*View, error) {
	prof, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.AnonName != nil {
		prof.AnonName = *req.AnonName
	}
	if req.Bio != nil {
		prof.Bio = req.Bio
	}
	if req.Gender != nil {
		prof.Gender = req.Gender
	}
	if req.Age != nil {
		prof.Age = req.Age
	}
	if req.Location != nil {
		prof.Location = req.Location
	}
	if req.Interests != nil {
		prof.Interests = domain.StringList(*req.Interests)
	}
	if req.Answers != nil {
		prof.Answers = domain.AnswerMap(*req.Answers)
	}

	if err := uc.profileRepo.Update(ctx, prof); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if req.Prefs != nil {
		pref, err := uc.prefRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if req.Prefs.Gender != nil {
			pref.GenderPref = *req.Prefs.Gender
		}
		if req.Prefs.AgeMin != nil {
			pref.AgeMin = *req.Prefs.AgeMin
		}
		if req.Prefs.AgeMax != nil {
			pref.AgeMax = *req.Prefs.AgeMax
		}
		if req.Prefs.Distance != nil {
			pref.DistancePref = *req.Prefs.Distance
		}
		if err := uc.prefRepo.Update(ctx, pref); err != nil {
			return nil, fmt.Errorf("failed to update preferences: %w", err)
		}
	}

	return uc.Get(ctx, userID)
}
