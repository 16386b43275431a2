package repositories

import "errors"

// Repository-level sentinels. Services translate these into the domain
// error taxonomy before they reach a handler.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrShopNotFound      = errors.New("shop not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrTokenNotFound     = errors.New("refresh token not found")
	ErrDatabaseOperation = errors.New("database operation failed")
)
