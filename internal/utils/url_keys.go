package utils

const (
	// UsernameKey is the key for username used in routing parameters.
	UsernameKey = "username"

	// ItemIdKey is the key for item ID used in routing parameters.
	ItemIdKey = "itemId"

	// ExchangeIdKey is the key for exchange ID used in routing parameters.
	ExchangeIdKey = "exchangeId"

	// CategoryParamKey is the key for category filter used in query parameters.
	CategoryParamKey = "category"

	// SearchParamKey is the key for free-text search used in query parameters.
	SearchParamKey = "search"

	// ExchangeRoleParamKey is the key for the incoming/outgoing filter used in query parameters.
	ExchangeRoleParamKey = "role"

	// ExchangeStatusParamKey is the key for the status filter used in query parameters.
	ExchangeStatusParamKey = "status"

	// OffsetParamKey is the key for offset used in pagination query parameters.
	OffsetParamKey = "offset"

	// LimitParamKey is the key for limit used in pagination query parameters.
	LimitParamKey = "limit"
)
