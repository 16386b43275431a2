package errors

var (
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "amount must be greater than zero",
	}
	ErrEmptyBasket = &DomainError{
		Code:    "EMPTY_BASKET",
		Message: "items must be a non-empty list",
	}
	ErrMissingFields = &DomainError{
		Code:    "MISSING_FIELDS",
		Message: "required fields are missing",
	}
	ErrAccountNotFound = &DomainError{
		Code:    "ACCOUNT_NOT_FOUND",
		Message: "account not found",
	}
	ErrSameAccount = &DomainError{
		Code:    "SAME_ACCOUNT",
		Message: "cannot transfer to the same account",
	}
	ErrPaymentNotConfirmed = &DomainError{
		Code:    "PAYMENT_NOT_CONFIRMED",
		Message: "payment has not been confirmed by the provider",
	}
	ErrPermissionDenied = &DomainError{
		Code:    "PERMISSION_DENIED",
		Message: "permission denied",
	}
	ErrUnknownRole = &DomainError{
		Code:    "UNKNOWN_ROLE",
		Message: "role does not map to a known rank",
	}
	ErrTransactionFailed = &DomainError{
		Code:    "TRANSACTION_FAILED",
		Message: "settlement could not be committed",
	}
)
