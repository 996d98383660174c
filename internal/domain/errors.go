package domain

import "errors"

var (
	// ErrInvalidProfile marks a profile whose required numeric fields are
	// missing or malformed.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrNoGoals is returned when prioritization is requested for a profile
	// with an empty goal list. Callers must add a goal first.
	ErrNoGoals = errors.New("no goals to prioritize")

	// ErrNoRankings guards the planner against a scorer that produced no
	// rankings despite a non-empty goal list.
	ErrNoRankings = errors.New("no goal scores computed")
)
