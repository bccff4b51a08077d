package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Price lookup gateway error kinds. RateLimited and Transient are
	// retryable on the next run; AuthInvalid and ProductNotFound are not.
	RateLimited     failure.ErrorCode = "RateLimited"
	AuthInvalid     failure.ErrorCode = "AuthInvalid"
	ProductNotFound failure.ErrorCode = "ProductNotFound"
	Transient       failure.ErrorCode = "Transient"

	DealNotFound      failure.ErrorCode = "DealNotFound"
	InvalidWindow     failure.ErrorCode = "InvalidWindow"
	CatalogUnreadable failure.ErrorCode = "CatalogUnreadable"
	RateUnavailable   failure.ErrorCode = "RateUnavailable"
)
