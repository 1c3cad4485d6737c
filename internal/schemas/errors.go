package schemas

// CustomError is the stable error shape returned by every endpoint.
// Code is machine-readable and never changes once released; Message is a
// human-readable explanation safe to show to end users.
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The request body is invalid. Please check the request body and try again.",
	}
	UsernameTaken = &CustomError{
		Code:    "ERR-002",
		Message: "The username is already taken. Please try another username.",
	}
	EmailTaken = &CustomError{
		Code:    "ERR-003",
		Message: "The email is already registered. Please login or use another email.",
	}
	UserNotFound = &CustomError{
		Code:    "ERR-004",
		Message: "The user was not found. Please check the username and try again.",
	}
	ItemNotFound = &CustomError{
		Code:    "ERR-005",
		Message: "The item was not found. Please check the item id and try again.",
	}
	ExchangeNotFound = &CustomError{
		Code:    "ERR-006",
		Message: "The exchange was not found. Please check the exchange id and try again.",
	}
	Forbidden = &CustomError{
		Code:    "ERR-007",
		Message: "You are not allowed to perform this action on this resource.",
	}
	OwnItemExchange = &CustomError{
		Code:    "ERR-008",
		Message: "You cannot propose an exchange on your own item.",
	}
	ItemUnavailable = &CustomError{
		Code:    "ERR-009",
		Message: "The item is no longer available for exchange.",
	}
	InsufficientPoints = &CustomError{
		Code:    "ERR-010",
		Message: "The requesting user does not have enough points for this exchange.",
	}
	InvalidTransition = &CustomError{
		Code:    "ERR-011",
		Message: "The exchange is not in a state that allows this action.",
	}
	ExchangeAlreadyExists = &CustomError{
		Code:    "ERR-012",
		Message: "A pending exchange for this item already exists.",
	}
	DatabaseError = &CustomError{
		Code:    "ERR-013",
		Message: "An internal database error occurred. Please try again later.",
	}
	Unauthorized = &CustomError{
		Code:    "ERR-014",
		Message: "The request is unauthorized. Please login to your account.",
	}
	InternalServerError = &CustomError{
		Code:    "ERR-015",
		Message: "An internal server error occurred. Please try again later.",
	}
	EmailNotSent = &CustomError{
		Code:    "ERR-016",
		Message: "The verification mail could not be sent. Please try again later.",
	}
	InvalidCredentials = &CustomError{
		Code:    "ERR-017",
		Message: "The credentials are invalid. Please check username and password.",
	}
	UserAlreadyVerified = &CustomError{
		Code:    "ERR-018",
		Message: "The account is already verified.",
	}
	InvalidVerificationCode = &CustomError{
		Code:    "ERR-019",
		Message: "The verification code is invalid or has expired. Please request a new one.",
	}
	FileNotImage = &CustomError{
		Code:    "ERR-020",
		Message: "The uploaded file must be an image.",
	}
	FileTooLarge = &CustomError{
		Code:    "ERR-021",
		Message: "The uploaded file exceeds the maximum allowed size.",
	}
	EmailUnreachable = &CustomError{
		Code:    "ERR-022",
		Message: "The email address appears to be unreachable. Please check the address and try again.",
	}
)
