package model

import "time"

// CodeAnalysis is one persisted submission: the Python code a user sent in
// plus the two generated explanations.
//
// Analyses are write-once. Both explanation calls must succeed before a row
// is created, and no update or delete path exists afterwards. The `json:"..."`
// tags match the field names the web client expects.
type CodeAnalysis struct {
	ID                    int64     `json:"id"`
	UserID                int64     `json:"userId"`
	Code                  string    `json:"code"`
	FileName              string    `json:"fileName"` // Original upload name (may be empty)
	ElementaryExplanation string    `json:"elementaryExplanation"`
	CollegeExplanation    string    `json:"collegeExplanation"`
	CreatedAt             time.Time `json:"createdAt"`
}
