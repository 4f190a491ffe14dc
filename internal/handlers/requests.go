package handlers

import "github.com/abrezinsky/ldtab/internal/models"

// SessionRequest starts or renames a session
type SessionRequest struct {
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	Password string      `json:"password,omitempty"`
}

// TournamentCreateRequest represents a request to create a tournament
type TournamentCreateRequest struct {
	Name  string `json:"name"`
	Topic string `json:"topic"`
}

// JudgeAssignRequest adds a judge to a debate
type JudgeAssignRequest struct {
	JudgeID string `json:"judge_id"`
}

// BallotSubmitRequest is a judge's ballot. The debate comes from the URL.
type BallotSubmitRequest struct {
	AffScore float64         `json:"aff_score"`
	NegScore float64         `json:"neg_score"`
	Decision models.Decision `json:"decision"`
	RFD      string          `json:"rfd"`
	Flow     string          `json:"flow,omitempty"`
}

// ContactUpdateRequest edits the caller's contact fields
type ContactUpdateRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// StatusUpdateRequest sets a debater's status
type StatusUpdateRequest struct {
	Status models.DebaterStatus `json:"status"`
}

// SeedRequest represents a request to seed demo participants
type SeedRequest struct {
	Debaters int `json:"debaters"`
	Judges   int `json:"judges"`
}
