package schedule

import "errors"

var (
	ErrUnknownAction     = errors.New("unknown action")
	ErrMemberCount       = errors.New("member count out of bounds")
	ErrMemberUnavailable = errors.New("member unavailable")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

type UnknownActionError struct {
	ActionID string
}

func (e *UnknownActionError) Error() string {
	return ErrUnknownAction.Error()
}

func (e *UnknownActionError) Unwrap() error {
	return ErrUnknownAction
}

type MemberCountError struct {
	ActionID string
	Got      int
	Min      int
	Max      int // 0 means unbounded
}

func (e *MemberCountError) Error() string {
	return ErrMemberCount.Error()
}

func (e *MemberCountError) Unwrap() error {
	return ErrMemberCount
}

type MemberUnavailableError struct {
	MemberID string
}

func (e *MemberUnavailableError) Error() string {
	return ErrMemberUnavailable.Error()
}

func (e *MemberUnavailableError) Unwrap() error {
	return ErrMemberUnavailable
}

type InsufficientFundsError struct {
	Required  int
	Available int
}

func (e *InsufficientFundsError) Error() string {
	return ErrInsufficientFunds.Error()
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
