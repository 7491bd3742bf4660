package service

import "errors"

// Sentinel errors returned by the service layer. HTTP handlers and the
// gateway webhook map these onto status codes and gateway result codes.
var (
	ErrUmbrellaNotFound = errors.New("umbrella not found")
	ErrBlockNotFound    = errors.New("block not found")
	ErrZoneNotFound     = errors.New("zone not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrBankNotFound     = errors.New("bank not found")
	ErrMeetingNotFound  = errors.New("meeting not found")
	ErrPaymentNotFound  = errors.New("payment not found")

	ErrDuplicateName   = errors.New("name already taken")
	ErrDuplicateMember = errors.New("phone or national id already registered")

	ErrRoleHeld        = errors.New("member already holds an exclusive committee role")
	ErrSeatTaken       = errors.New("committee seat already filled for this block")
	ErrRoleNotAssigned = errors.New("role not assigned to this member")

	ErrNotBlockMember    = errors.New("member does not belong to the block")
	ErrNotUmbrellaMember = errors.New("member does not belong to the umbrella")

	ErrZoneBlockMismatch = errors.New("zone does not belong to the block")
	ErrDateInPast        = errors.New("meeting date must be in the future")
	ErrWeekConflict      = errors.New("block already has a meeting that week")
	ErrMeetingElapsed    = errors.New("meeting date has passed, record is read-only")

	ErrInvalidAmount = errors.New("amount must be positive")
)
