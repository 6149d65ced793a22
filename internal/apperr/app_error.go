package apperr

import "github.com/tuanvumaihuynh/digital-store/pkg/zerror"

const (
	ValidationErrorCode    = "VALIDATION_FAILED"
	UploadErrorCode        = "UPLOAD_FAILED"
	RequestTooLargeCode    = "REQUEST_TOO_LARGE"
	UnauthorizedCode       = "UNAUTHORIZED"
	InvalidCredentialsCode = "INVALID_CREDENTIALS"
	ForbiddenCode          = "FORBIDDEN"
	RouteNotFoundCode      = "ROUTE_NOT_FOUND"
	MethodNotAllowedCode   = "METHOD_NOT_ALLOWED"

	ProductNotFoundCode = "PRODUCT_NOT_FOUND"
	PageNotFoundCode    = "PAGE_NOT_FOUND"

	CategoryNotFoundCode   = "CATEGORY_NOT_FOUND"
	CategoryNameExistsCode = "CATEGORY_NAME_EXISTS"
	CategoryInUseCode      = "CATEGORY_IN_USE"

	UsernameTakenCode = "USERNAME_TAKEN"
	EmailTakenCode    = "EMAIL_TAKEN"
	UserNotFoundCode  = "USER_NOT_FOUND"

	FileCleanupFailedCode = "FILE_CLEANUP_FAILED"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "Input validation failed.")
	UploadErr     = zerror.NewBadRequest(UploadErrorCode, "File upload failed.")

	RequestTooLarge = zerror.NewBadRequest(RequestTooLargeCode, "Request body is too large.")

	Unauthorized       = zerror.NewUnauthorized(UnauthorizedCode, "Authentication required. Please log in.")
	InvalidCredentials = zerror.NewUnauthorized(InvalidCredentialsCode, "Invalid email or password.")
	Forbidden          = zerror.NewForbidden(ForbiddenCode, "Access denied. Administrator privileges required.")
	RouteNotFound      = zerror.NewNotFound(RouteNotFoundCode, "Resource not found.")
	MethodNotAllowed   = zerror.NewMethodNotAllowed(MethodNotAllowedCode, "Method not allowed.")

	ProductNotFound = zerror.NewNotFound(ProductNotFoundCode, "Product not found.")
	PageNotFound    = zerror.NewNotFound(PageNotFoundCode, "Page not found.")

	CategoryNotFound   = zerror.NewNotFound(CategoryNotFoundCode, "Category not found.")
	CategoryNameExists = zerror.NewConflict(CategoryNameExistsCode, "Category name already exists.")
	CategoryInUse      = zerror.NewConflict(CategoryInUseCode, "Cannot delete category. It is currently associated with products.")

	UsernameTaken = zerror.NewConflict(UsernameTakenCode, "Username already taken.")
	EmailTaken    = zerror.NewConflict(EmailTakenCode, "Email already registered.")
	UserNotFound  = zerror.NewNotFound(UserNotFoundCode, "User not found.")

	FileCleanupFailed = zerror.NewInternalServerError(FileCleanupFailedCode, "Failed to remove product files. The product was not deleted.")
)
