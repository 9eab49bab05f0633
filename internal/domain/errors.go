package domain

import "errors"

// Domain errors
var (
	ErrMatchFull           = errors.New("match already has two participants")
	ErrMatchFinished       = errors.New("match is finished")
	ErrMatchNotPlaying     = errors.New("match is not in playing state")
	ErrNoActiveRound       = errors.New("no active round")
	ErrRoundInProgress     = errors.New("previous round has not been sealed")
	ErrAlreadySubmitted    = errors.New("already submitted this round")
	ErrParticipantNotFound = errors.New("participant not found in match")
	ErrUnknownMode         = errors.New("unknown game mode")
	ErrNotQueued           = errors.New("participant is not in the queue")
	ErrAlreadyInMatch      = errors.New("participant is already in a match")
)
