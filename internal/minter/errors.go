package minter

import "fmt"

// SubmissionError is a wallet or chain-level rejection raised before
// the redemption transaction was included.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit redemption: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ConfirmError is the chain's verdict on a submitted redemption. A
// reverted redemption means the voucher signature was rejected -
// typically already consumed - so a fresh voucher is required, not a
// resubmission of the same signature.
type ConfirmError struct {
	Reverted bool
	Err      error
}

func (e *ConfirmError) Error() string {
	if e.Reverted {
		return "redemption reverted: voucher already redeemed or signature invalid, request a new voucher"
	}
	return fmt.Sprintf("await confirmation: %v", e.Err)
}

func (e *ConfirmError) Unwrap() error {
	return e.Err
}
