package domain

// PrefAny disables a filter dimension.
const PrefAny = "any"

// Preference holds a user's partner filters. ageMin > ageMax is not rejected
// here; a contradictory range simply matches nothing.
type Preference struct {
	UserID       string `json:"user_id" db:"user_id"`
	GenderPref   string `json:"gender" db:"gender_pref"`
	AgeMin       int    `json:"age_min" db:"age_min"`
	AgeMax       int    `json:"age_max" db:"age_max"`
	DistancePref string `json:"distance" db:"distance_pref"`
}

// DefaultPreference returns the filters assigned at signup.
func DefaultPreference(userID string) *Preference {
	return &Preference{
		UserID:       userID,
		GenderPref:   PrefAny,
		AgeMin:       18,
		AgeMax:       80,
		DistancePref: PrefAny,
	}
}
