package command

import "errors"

// Resolution and confirmation failures. All are typed, user-displayable
// rejections: the pipeline reports them to the caller, it never crashes on
// them.
var (
	ErrTargetNotFound  = errors.New("no trip matches the command target")
	ErrAmbiguousTarget = errors.New("more than one trip matches the command target")
	ErrUnknownAction   = errors.New("unknown command action")
	ErrMissingParam    = errors.New("required command parameter missing")
	ErrSessionNotFound = errors.New("confirmation session not found")
	ErrSessionExpired  = errors.New("confirmation session expired")
)
