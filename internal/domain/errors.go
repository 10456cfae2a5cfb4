package domain

import "errors"

var (
	// ErrUnauthorized is returned when no valid user or team credential accompanies a request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionNotFound is returned when a session token resolves to no team.
	ErrSessionNotFound = errors.New("session not found")
	// ErrForbidden is returned when the caller's role is insufficient.
	ErrForbidden = errors.New("forbidden")
	// ErrGameNotFound indicates the game is absent, inactive, or not owned by the caller.
	ErrGameNotFound = errors.New("game not found")
	// ErrChallengeNotFound indicates a challenge is absent or belongs to another game.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrLibraryItemNotFound indicates a library item is absent or not approved.
	ErrLibraryItemNotFound = errors.New("library item not found")
	// ErrUserNotFound indicates the profile row is absent.
	ErrUserNotFound = errors.New("user not found")
	// ErrGameFull is returned when a join would exceed the game's max_teams setting.
	ErrGameFull = errors.New("game full, maximum number of teams reached")
	// ErrTeamNameTaken is returned when the display name is already used in the game.
	ErrTeamNameTaken = errors.New("team name already taken")
	// ErrRateLimited is returned when a team exceeds the submission attempt quota.
	ErrRateLimited = errors.New("too many attempts, wait a minute")
	// ErrGameNeedsChallenge blocks activating a game with no challenges.
	ErrGameNeedsChallenge = errors.New("game must have at least one challenge")
	// ErrReflectionExists is returned when a team re-submits its reflection.
	ErrReflectionExists = errors.New("reflection already submitted")
	// ErrSelfRoleChange blocks a super admin from changing their own role.
	ErrSelfRoleChange = errors.New("cannot change your own role")
	// ErrValidation covers malformed request bodies; wrapped with detail at the edge.
	ErrValidation = errors.New("invalid request")
)
