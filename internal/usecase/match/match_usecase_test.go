package match_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/matching"
	"github.com/anondate/anondate-backend/internal/repository/memory"
	"github.com/anondate/anondate-backend/internal/usecase/match"
)

func setup(t *testing.T) (*memory.Store, *match.UseCase) {
	t.Helper()
	store := memory.NewStore()
	uc := match.NewUseCase(store.Profiles(), store.Blocks(), store.Conversations())
	return store, uc
}

func addProfile(t *testing.T, store *memory.Store, id string, answers domain.AnswerMap, gender *string, age *int) {
	t.Helper()
	require.NoError(t, store.Profiles().Create(context.Background(), &domain.Profile{
		UserID:   id,
		AnonName: "User#" + id,
		Answers:  answers,
		Gender:   gender,
		Age:      age,
	}))
}

func findRequest(answers map[string]string) *match.FindRequest {
	return &match.FindRequest{
		Answers: answers,
		Filters: match.Filters{Gender: "any", AgeMin: 18, AgeMax: 80},
	}
}

func TestFindMatchesRankingOrder(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)
	answers := map[string]string{"1": "adventure", "2": "discuss", "3": "quality"}

	addProfile(t, store, "req", nil, nil, nil)
	addProfile(t, store, "all", domain.AnswerMap{"1": "adventure", "2": "discuss", "3": "quality"}, nil, nil)
	addProfile(t, store, "one", domain.AnswerMap{"1": "adventure", "2": "humor", "3": "gifts"}, nil, nil)
	addProfile(t, store, "zero", domain.AnswerMap{"1": "cozy", "2": "humor", "3": "gifts"}, nil, nil)

	result, err := uc.FindMatches(ctx, "req", findRequest(answers))
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, "all", result[0].ID)
	assert.Equal(t, "one", result[1].ID)
	assert.Equal(t, "zero", result[2].ID)
}

func TestFindMatchesExcludesBlockedEitherDirection(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)

	addProfile(t, store, "req", nil, nil, nil)
	addProfile(t, store, "blocked-by-req", nil, nil, nil)
	addProfile(t, store, "blocked-req", nil, nil, nil)
	addProfile(t, store, "clean", nil, nil, nil)

	require.NoError(t, store.Blocks().Upsert(ctx, &domain.Block{BlockerID: "req", BlockedID: "blocked-by-req"}))
	require.NoError(t, store.Blocks().Upsert(ctx, &domain.Block{BlockerID: "blocked-req", BlockedID: "req"}))

	result, err := uc.FindMatches(ctx, "req", findRequest(map[string]string{"1": "cozy"}))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "clean", result[0].ID)
}

func TestFindMatchesExcludesExistingPartners(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)

	addProfile(t, store, "req", nil, nil, nil)
	addProfile(t, store, "partner", nil, nil, nil)
	addProfile(t, store, "fresh", nil, nil, nil)

	_, _, err := store.Conversations().CreateOrGet(ctx, &domain.Conversation{
		ID: "c1", UserLow: "req", UserHigh: "partner",
	})
	require.NoError(t, err)

	result, err := uc.FindMatches(ctx, "req", findRequest(map[string]string{"1": "cozy"}))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "fresh", result[0].ID)
}

func TestFindMatchesLenientFilters(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)
	female, male := "female", "male"
	age17, age30 := 17, 30

	addProfile(t, store, "req", nil, nil, nil)
	addProfile(t, store, "match-gender", nil, &female, &age30)
	addProfile(t, store, "wrong-gender", nil, &male, &age30)
	addProfile(t, store, "too-young", nil, &female, &age17)
	addProfile(t, store, "no-data", nil, nil, nil)

	req := &match.FindRequest{
		Answers: map[string]string{"1": "cozy"},
		Filters: match.Filters{Gender: "female", AgeMin: 18, AgeMax: 80},
	}
	result, err := uc.FindMatches(ctx, "req", req)
	require.NoError(t, err)

	ids := make([]string, 0, len(result))
	for _, c := range result {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{"match-gender", "no-data"}, ids)
}

func TestFindMatchesContradictoryAgeRange(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)
	age30 := 30

	addProfile(t, store, "req", nil, nil, nil)
	addProfile(t, store, "aged", nil, nil, &age30)

	req := &match.FindRequest{
		Answers: map[string]string{"1": "cozy"},
		Filters: match.Filters{AgeMin: 60, AgeMax: 20},
	}
	result, err := uc.FindMatches(ctx, "req", req)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestFindMatchesPersistsAnswers(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)
	addProfile(t, store, "req", nil, nil, nil)

	answers := map[string]string{"1": "cozy", "2": "reflect", "3": "words"}
	_, err := uc.FindMatches(ctx, "req", findRequest(answers))
	require.NoError(t, err)

	prof, err := store.Profiles().GetByUserID(ctx, "req")
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerMap(answers), prof.Answers)
}

func TestFindMatchesRequesterMissing(t *testing.T) {
	_, uc := setup(t)
	_, err := uc.FindMatches(context.Background(), "ghost", findRequest(map[string]string{"1": "cozy"}))
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestFindMatchesTruncatesToTopN(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)
	addProfile(t, store, "req", nil, nil, nil)
	for i := 0; i < match.TopN+5; i++ {
		addProfile(t, store, fmt.Sprintf("cand-%02d", i), nil, nil, nil)
	}

	result, err := uc.FindMatches(ctx, "req", findRequest(map[string]string{"1": "cozy"}))
	require.NoError(t, err)
	assert.Len(t, result, match.TopN)
}

func TestFindMatchesDisplayScoreBounded(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)
	addProfile(t, store, "req", nil, nil, nil)
	addProfile(t, store, "zero", domain.AnswerMap{"1": "x", "2": "y", "3": "z"}, nil, nil)
	addProfile(t, store, "full", domain.AnswerMap{"1": "cozy", "2": "reflect", "3": "words"}, nil, nil)

	result, err := uc.FindMatches(ctx, "req", findRequest(map[string]string{"1": "cozy", "2": "reflect", "3": "words"}))
	require.NoError(t, err)
	for _, cand := range result {
		assert.GreaterOrEqual(t, cand.Compatibility, matching.DisplayMin)
		assert.LessOrEqual(t, cand.Compatibility, matching.DisplayMax)
	}
}
