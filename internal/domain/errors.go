package domain

import "errors"

var (
	// ErrInsufficientBalance rejects a swap whose from-amount exceeds the held balance.
	// The wallet state is left untouched.
	ErrInsufficientBalance = errors.New("insufficient balance for this swap")

	// ErrSwapInFlight rejects a swap attempted while another one is still settling.
	ErrSwapInFlight = errors.New("another swap is already in flight")
)
