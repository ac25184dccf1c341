package errorvalues

import "errors"

var (
	ErrMedicationNotFound   = errors.New("medication doesn't exist")
	ErrFamilyMemberNotFound = errors.New("family member doesn't exist")
	ErrDoseLimitReached     = errors.New("all doses for today already taken")
	ErrValidation           = errors.New("invalid input")
	ErrBadClockTime         = errors.New("invalid HH:MM time value")
	ErrBadDate              = errors.New("invalid date value")
)
