package submission

import "errors"

var (
	ErrNotFound            = errors.New("submission not found")
	ErrBusinessNotFound    = errors.New("business not found")
	ErrNotPending          = errors.New("submission is no longer pending")
	ErrAlreadyVerified     = errors.New("business is already verified")
	ErrAlreadyClaimed      = errors.New("business is already claimed")
	ErrClaimPending        = errors.New("a claim for this business is already pending")
	ErrEmptyRevision       = errors.New("no changes were made")
	ErrNotOwner            = errors.New("you do not own this business")
	ErrDuplicateSubmission = errors.New("this business was already submitted and is awaiting review")
	ErrMissingBusinessName = errors.New("business name is required")
	ErrInvalidToken        = errors.New("invalid verification link")
	ErrTokenExpired        = errors.New("verification link has expired")
	ErrEmailVerified       = errors.New("email address was already verified")
	ErrUnknownType         = errors.New("unknown submission type")
)
