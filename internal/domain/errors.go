package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the services wraps exactly one of
// these so transports can map them without string matching.
var (
	ErrNotFound           = errors.New("not found")
	ErrIllegalAction      = errors.New("illegal action")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// Lookup errors
var (
	ErrLobbyNotFound  = fmt.Errorf("lobby %w", ErrNotFound)
	ErrLeaderNotFound = fmt.Errorf("leader %w", ErrNotFound)
	ErrMapNotFound    = fmt.Errorf("map %w", ErrNotFound)
	ErrPresetNotFound = fmt.Errorf("preset %w", ErrNotFound)
)

// Draft legality errors
var (
	ErrMapNotInPool      = fmt.Errorf("%w: map is not in the lobby's map pool", ErrIllegalAction)
	ErrMapAlreadyBanned  = fmt.Errorf("%w: map already banned", ErrIllegalAction)
	ErrLeaderUnavailable = fmt.Errorf("%w: leader already banned or picked", ErrIllegalAction)
	ErrLeaderAutoBanned  = fmt.Errorf("%w: leader is auto-banned for this lobby", ErrIllegalAction)
	ErrNoLegalCandidate  = fmt.Errorf("%w: no legal candidate left", ErrIllegalAction)
)

// Input and lifecycle errors
var (
	ErrInvalidTeam      = fmt.Errorf("%w: team must be 1 or 2", ErrPreconditionFailed)
	ErrInvalidRotations = fmt.Errorf("%w: rotation sizes must be positive with even ban and pick totals", ErrPreconditionFailed)
	ErrInvalidLobby     = fmt.Errorf("%w: invalid lobby configuration", ErrPreconditionFailed)
	ErrTeamsNotReady    = fmt.Errorf("%w: both teams must be ready", ErrPreconditionFailed)
	ErrPlayerNotInTeam  = fmt.Errorf("%w: player is not in any team", ErrPreconditionFailed)
	ErrInvalidMessage   = fmt.Errorf("%w: invalid chat message", ErrPreconditionFailed)
	ErrInvalidPlayer    = fmt.Errorf("%w: player id and pseudo are required", ErrPreconditionFailed)
	ErrInvalidPreset    = fmt.Errorf("%w: invalid preset", ErrPreconditionFailed)
	ErrPresetNameTaken  = fmt.Errorf("%w: preset name already exists", ErrPreconditionFailed)
)
