package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation (SQL, in-memory)
// from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when creating a record whose id is already taken.
var ErrDuplicate = errors.New("record already exists")

// Preference keys persisted per user
const (
	PrefUserName     = "debate-user-name"
	PrefUserRole     = "debate-user-role"
	PrefTournamentID = "debate-tournament-id"
)
