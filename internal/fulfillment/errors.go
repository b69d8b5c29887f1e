package fulfillment

import "errors"

var (
	// checkout
	ErrInvalidInput    = errors.New("invalid checkout input")
	ErrProductNotFound = errors.New("product not found")
	ErrAmountMismatch  = errors.New("amount does not match product price")

	// dispatch: gateway tidak bisa ditanya; order tidak disentuh, aman di-poll ulang
	ErrStatusUnknown = errors.New("payment status unknown")

	// order completed tanpa delivery (atau kebalikannya) — jangan provisioning
	// ulang buta, serahkan ke operator
	ErrInconsistent = errors.New("order/delivery state inconsistent, needs operator")
)
