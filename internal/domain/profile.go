package domain

// Profile is the anonymous persona shown to other users. It never exposes
// the owner's email or any other identity field.
type Profile struct {
	UserID    string     `json:"user_id" db:"user_id"`
	AnonName  string     `json:"anon_name" db:"anon_name"`
	Bio       *string    `json:"bio" db:"bio"`
	Gender    *string    `json:"gender" db:"gender"`
	Age       *int       `json:"age" db:"age"`
	Location  *string    `json:"location" db:"location"`
	Interests StringList `json:"interests" db:"interests"`
	Answers   AnswerMap  `json:"answers" db:"answers"`
}

// HasAnswers reports whether the profile carries any stored quiz answers.
func (p *Profile) HasAnswers() bool {
	return len(p.Answers) > 0
}
