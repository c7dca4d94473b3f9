package domain

import "time"

// UserProgress is the best result a user has achieved on a level.
type UserProgress struct {
	UserID       string    `json:"user_id"`
	LevelID      string    `json:"level_id"`
	LevelNumber  int       `json:"level_number"`
	IsPassed     bool      `json:"is_passed"`
	HighestScore int       `json:"highest_score"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Apply folds a finished session's score into the progress record.
// HighestScore never decreases and IsPassed never reverts.
// It reports whether anything changed.
func (p *UserProgress) Apply(score, passingScore int, now time.Time) bool {
	changed := false
	if score > p.HighestScore {
		p.HighestScore = score
		changed = true
	}
	if !p.IsPassed && score >= passingScore {
		p.IsPassed = true
		changed = true
	}
	if changed {
		p.UpdatedAt = now
	}
	return changed
}
