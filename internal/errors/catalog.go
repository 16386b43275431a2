package errors

var (
	ErrShopNotFound = &DomainError{
		Code:    "SHOP_NOT_FOUND",
		Message: "shop not found",
	}
	ErrCategoryNotFound = &DomainError{
		Code:    "CATEGORY_NOT_FOUND",
		Message: "category not found",
	}
	ErrProductNotFound = &DomainError{
		Code:    "PRODUCT_NOT_FOUND",
		Message: "one or more products not found",
	}
	ErrShopExists = &DomainError{
		Code:    "SHOP_EXISTS",
		Message: "a shop with this name already exists",
	}
	ErrCategoryExists = &DomainError{
		Code:    "CATEGORY_EXISTS",
		Message: "a category with this name already exists in this shop",
	}
	ErrCategoryShopMismatch = &DomainError{
		Code:    "CATEGORY_SHOP_MISMATCH",
		Message: "category does not belong to the product's shop",
	}
)
