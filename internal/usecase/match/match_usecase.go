package match

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/logger"
	"github.com/anondate/anondate-backend/internal/matching"
	"github.com/anondate/anondate-backend/internal/repository"
)

// TopN caps the number of returned candidates.
const TopN = 10

// defaultTiebreakAge anchors the age-proximity tiebreak when the requester
// sent no minimum-age filter.
const defaultTiebreakAge = 25

type UseCase struct {
	profileRepo repository.ProfileRepository
	blockRepo   repository.BlockRepository
	convRepo    repository.ConversationRepository
}

func NewUseCase(
	profileRepo repository.ProfileRepository,
	blockRepo repository.BlockRepository,
	convRepo repository.ConversationRepository,
) *UseCase {
	return &UseCase{
		profileRepo: profileRepo,
		blockRepo:   blockRepo,
		convRepo:    convRepo,
	}
}

// Filters are the requester's partner criteria. Zero values mean "any".
type Filters struct {
	Gender   string `json:"gender" binding:"omitempty,genderopt"`
	AgeMin   int    `json:"age_min" binding:"omitempty,min=18,max=120"`
	AgeMax   int    `json:"age_max" binding:"omitempty,min=18,max=120"`
	Distance string `json:"distance"`
}

type FindRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
	Filters Filters           `json:"filters"`
}

// Candidate is a ranked match as presented to the client. Compatibility is
// the display score; the underlying rank order is fixed before it is
// derived.
type Candidate struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Bio           *string  `json:"bio"`
	Age           *int     `json:"age"`
	Gender        *string  `json:"gender"`
	Compatibility int      `json:"compatibility"`
	Interests     []string `json:"interests"`
	Distance      string   `json:"distance"`
	Avatar        string   `json:"avatar"`
}

// FindMatches persists the requester's quiz answers, builds the candidate
// pool, scores and ranks it, and returns the top candidates.
func (uc *UseCase) FindMatches(ctx context.Context, requesterID string, req *FindRequest) ([]Candidate, error) {
	// Answers are saved first so the quiz outlives a failed search.
	answers := domain.AnswerMap(req.Answers)
	if err := uc.profileRepo.SaveAnswers(ctx, requesterID, answers); err != nil {
		return nil, err
	}

	candidates, err := uc.profileRepo.ListExcept(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	blocked, err := uc.blockRepo.ListBlockedWith(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	partners, err := uc.convRepo.ListPartnerIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation partners: %w", err)
	}

	excluded := make(map[string]bool, len(blocked)+len(partners))
	for _, id := range blocked {
		excluded[id] = true
	}
	for _, id := range partners {
		excluded[id] = true
	}

	pool := make([]*domain.Profile, 0, len(candidates))
	for _, c := range candidates {
		if excluded[c.UserID] {
			continue
		}
		if !passesFilters(c, req.Filters) {
			continue
		}
		pool = append(pool, c)
	}

	anchor := req.Filters.AgeMin
	if anchor == 0 {
		anchor = defaultTiebreakAge
	}
	ranked := matching.Rank(answers, pool, anchor)
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}

	logger.Debug("match search complete", "requester", requesterID,
		"pool", len(pool), "returned", len(ranked))

	out := make([]Candidate, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, presentCandidate(r))
	}
	return out, nil
}

// passesFilters applies the optional lenient filters: a candidate with
// missing demographic data is never disqualified.
func passesFilters(p *domain.Profile, f Filters) bool {
	if f.Gender != "" && f.Gender != domain.PrefAny {
		if p.Gender != nil && *p.Gender != f.Gender {
			return false
		}
	}
	if f.AgeMin > 0 && p.Age != nil && *p.Age < f.AgeMin {
		return false
	}
	if f.AgeMax > 0 && p.Age != nil && *p.Age > f.AgeMax {
		return false
	}
	return true
}

// presentCandidate builds the display form of an already-ranked candidate.
// The jitter and the distance stub are presentation-only.
func presentCandidate(r matching.Scored) Candidate {
	interests := []string(r.Profile.Interests)
	if interests == nil {
		interests = []string{}
	}
	return Candidate{
		ID:            r.Profile.UserID,
		Name:          r.Profile.AnonName,
		Bio:           r.Profile.Bio,
		Age:           r.Profile.Age,
		Gender:        r.Profile.Gender,
		Compatibility: matching.DisplayScore(r.Score, rand.Intn(matching.JitterRange)),
		Interests:     interests,
		Distance:      fmt.Sprintf("%d miles away", rand.Intn(15)+1),
		Avatar:        matching.AvatarFor(r.Profile.Answers),
	}
}
