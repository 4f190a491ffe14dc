package models

import "time"

// Role is the part a user plays in a tournament
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleJudge   Role = "Judge"
	RoleDebater Role = "Debater"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleJudge, RoleDebater:
		return true
	}
	return false
}

type TournamentStatus string

const (
	TournamentActive TournamentStatus = "Active"
	TournamentClosed TournamentStatus = "Closed"
)

type DebaterStatus string

const (
	DebaterActive     DebaterStatus = "Active"
	DebaterEliminated DebaterStatus = "Eliminated"
)

// Valid reports whether s is Active or Eliminated
func (s DebaterStatus) Valid() bool {
	return s == DebaterActive || s == DebaterEliminated
}

type DebateType string

const (
	DebatePrelim      DebateType = "Prelim"
	DebateElimination DebateType = "Elimination"
)

func (t DebateType) Valid() bool {
	return t == DebatePrelim || t == DebateElimination
}

type DebateStatus string

const (
	DebateOpen   DebateStatus = "Open"
	DebateClosed DebateStatus = "Closed"
)

// Decision is the side a judge votes for on a ballot
type Decision string

const (
	DecisionAff Decision = "Aff"
	DecisionNeg Decision = "Neg"
)

func (d Decision) Valid() bool {
	return d == DecisionAff || d == DecisionNeg
}

// Winner is the outcome of tallying a round's ballots
type Winner string

const (
	WinnerAff     Winner = "Aff"
	WinnerNeg     Winner = "Neg"
	WinnerPending Winner = "Pending"
)

// MaxJudges is the cap on judges per debate
const MaxJudges = 3

// Tournament is identified by its short join code
type Tournament struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Topic     string           `json:"topic"`
	OwnerID   string           `json:"owner_id"`
	Status    TournamentStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// IsClosed reports whether the tournament is read-only
func (t *Tournament) IsClosed() bool {
	return t.Status == TournamentClosed
}

// UserProfile is a participant. Status is only meaningful for debaters.
type UserProfile struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Role         Role          `json:"role"`
	TournamentID string        `json:"tournament_id,omitempty"`
	Status       DebaterStatus `json:"status,omitempty"`
	Email        string        `json:"email,omitempty"`
	Phone        string        `json:"phone,omitempty"`
}

// Debate is a single round between an affirmative and a negative debater
type Debate struct {
	ID           string       `json:"id"`
	TournamentID string       `json:"tournament_id"`
	Topic        string       `json:"topic"`
	Type         DebateType   `json:"type"`
	Stage        string       `json:"stage"`
	AffID        string       `json:"aff_id"`
	AffName      string       `json:"aff_name"`
	NegID        string       `json:"neg_id"`
	NegName      string       `json:"neg_name"`
	JudgeIDs     []string     `json:"judge_ids"`
	Status       DebateStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// HasJudge reports whether judgeID is on the panel
func (d *Debate) HasJudge(judgeID string) bool {
	for _, id := range d.JudgeIDs {
		if id == judgeID {
			return true
		}
	}
	return false
}

// Involves reports whether userID judges or debates in this round
func (d *Debate) Involves(userID string) bool {
	return d.AffID == userID || d.NegID == userID || d.HasJudge(userID)
}

// RoundResult is one judge's ballot. (DebateID, JudgeID) is unique.
type RoundResult struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	DebateID     string    `json:"debate_id"`
	JudgeID      string    `json:"judge_id"`
	JudgeName    string    `json:"judge_name"`
	AffScore     float64   `json:"aff_score"`
	NegScore     float64   `json:"neg_score"`
	Decision     Decision  `json:"decision"`
	RFD          string    `json:"rfd"`
	Flow         string    `json:"flow,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// DebaterStats is a derived standings row
type DebaterStats struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Wins   int           `json:"wins"`
	Losses int           `json:"losses"`
	Status DebaterStatus `json:"status"`
}

// Notification is a nudge shown to a single user
type Notification struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	UserID       string    `json:"user_id"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

// WSMessage represents a websocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
