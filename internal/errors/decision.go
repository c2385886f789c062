package errors

var (
	ErrInvalidMerchant = &DomainError{
		Kind:    KindClient,
		Code:    "INVALID_MERCHANT",
		Message: "invalid merchant.",
	}
	ErrCardholderNotFound = &DomainError{
		Kind:    KindClient,
		Code:    "CARDHOLDER_NOT_FOUND",
		Message: "cardholder not found",
	}
	ErrInvalidCode = &DomainError{
		Kind:    KindClient,
		Code:    "INVALID_CODE",
		Message: "auth required, invalid code",
	}
	ErrFactorNotEnrolled = &DomainError{
		Kind:    KindClient,
		Code:    "FACTOR_NOT_ENROLLED",
		Message: "factor not enrolled",
	}
	ErrRuleNotFound = &DomainError{
		Kind:    KindClient,
		Code:    "RULE_NOT_FOUND",
		Message: "rule not found",
	}
	ErrInvalidCredentials = &DomainError{
		Kind:    KindClient,
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid api key",
	}
)
