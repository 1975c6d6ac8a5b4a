package loanrequest

import "errors"

var (
	ErrNotFound = errors.New("loan request not found")

	// ErrInvalidConfiguration is returned when a request asks for nothing.
	ErrInvalidConfiguration = errors.New("loan request has no requested amount")

	ErrExceedsFundingRemaining = errors.New("contribution exceeds funding remaining")
	ErrOverpaymentRejected     = errors.New("repayment exceeds outstanding balance")

	// ErrAlreadyRepaid guards the schedule divisions once nothing is outstanding.
	ErrAlreadyRepaid = errors.New("loan request is fully repaid")
)
