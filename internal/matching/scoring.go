// Package matching implements compatibility scoring and ranking over typed
// in-memory candidate profiles, independent of the storage engine.
package matching

import (
	"sort"

	"github.com/anondate/anondate-backend/internal/domain"
)

// QuestionWeights assigns each quiz question its contribution to the
// compatibility score. Weights sum to 100; the love-language question (3)
// carries the most weight. This is the deployment's fixed policy.
var QuestionWeights = map[string]int{
	"1": 30,
	"2": 30,
	"3": 40,
}

// BaseScore is the flat score for candidates with no stored quiz answers.
const BaseScore = 50

// neutralAge substitutes for a missing candidate age in the tiebreak.
const neutralAge = 25

// Display bounds for the presentation-layer score.
const (
	DisplayMin  = 65
	DisplayMax  = 98
	JitterRange = 10
)

// Scored is a candidate annotated with its rank inputs.
type Scored struct {
	Profile *domain.Profile
	Score   int
	AgeGap  int
}

// Score computes the compatibility score of a candidate against the
// requester's submitted answers: the sum of per-question weights where the
// candidate's stored answer matches, or BaseScore when the candidate has
// never answered the quiz.
func Score(submitted domain.AnswerMap, candidate *domain.Profile) int {
	if !candidate.HasAnswers() {
		return BaseScore
	}
	total := 0
	for q, w := range QuestionWeights {
		if ans, ok := submitted[q]; ok && candidate.Answers[q] == ans {
			total += w
		}
	}
	return total
}

// AgeGap is the ranking tiebreak: distance between the candidate's age and
// the requester's minimum-age filter, approximating closeness to the desired
// range floor. A missing age counts as neutralAge.
func AgeGap(candidate *domain.Profile, ageMinFilter int) int {
	age := neutralAge
	if candidate.Age != nil {
		age = *candidate.Age
	}
	gap := age - ageMinFilter
	if gap < 0 {
		gap = -gap
	}
	return gap
}

// Rank scores each candidate and sorts by score descending, age gap
// ascending. The returned order is final: display jitter must be applied
// only after this.
func Rank(submitted domain.AnswerMap, candidates []*domain.Profile, ageMinFilter int) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, Scored{
			Profile: c,
			Score:   Score(submitted, c),
			AgeGap:  AgeGap(c, ageMinFilter),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].AgeGap < scored[j].AgeGap
	})
	return scored
}

// DisplayScore derives the presentation score from a rank score and a jitter
// in [0, JitterRange). It is a pure function applied after sorting, so the
// perturbation can never affect ranking order.
func DisplayScore(score, jitter int) int {
	v := score + jitter
	if v < DisplayMin {
		return DisplayMin
	}
	if v > DisplayMax {
		return DisplayMax
	}
	return v
}

// AvatarFor picks a personality glyph from the stored weekend answer.
func AvatarFor(answers domain.AnswerMap) string {
	switch answers["1"] {
	case "adventure":
		return "⛰️"
	case "cozy":
		return "📚"
	case "social":
		return "🎉"
	case "creative":
		return "🎨"
	default:
		return "👤"
	}
}
