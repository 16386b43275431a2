package errors

var (
	ErrUserExists = &DomainError{
		Code:    "USER_EXISTS",
		Message: "an account with this handle already exists",
	}
	ErrInvalidCredentials = &DomainError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid handle or password",
	}
	ErrInvalidToken = &DomainError{
		Code:    "INVALID_TOKEN",
		Message: "refresh token is invalid or expired",
	}
	ErrPasswordMismatch = &DomainError{
		Code:    "PASSWORD_MISMATCH",
		Message: "the new password and its confirmation do not match",
	}
)
