package schemas

// ItemCategory is the closed set of clothing categories.
type ItemCategory string

const (
	CategoryTops        ItemCategory = "tops"
	CategoryBottoms     ItemCategory = "bottoms"
	CategoryDresses     ItemCategory = "dresses"
	CategoryOuterwear   ItemCategory = "outerwear"
	CategoryShoes       ItemCategory = "shoes"
	CategoryAccessories ItemCategory = "accessories"
	CategoryBags        ItemCategory = "bags"
	CategoryOther       ItemCategory = "other"
)

// ItemCategories lists every valid category, in display order.
var ItemCategories = []ItemCategory{
	CategoryTops, CategoryBottoms, CategoryDresses, CategoryOuterwear,
	CategoryShoes, CategoryAccessories, CategoryBags, CategoryOther,
}

// IsValid reports whether the category is part of the closed set.
func (c ItemCategory) IsValid() bool {
	for _, candidate := range ItemCategories {
		if c == candidate {
			return true
		}
	}
	return false
}

// ItemCondition is the closed set of wear conditions.
type ItemCondition string

const (
	ConditionNew     ItemCondition = "new"
	ConditionLikeNew ItemCondition = "like_new"
	ConditionGood    ItemCondition = "good"
	ConditionFair    ItemCondition = "fair"
	ConditionPoor    ItemCondition = "poor"
)

// ItemConditions lists every valid condition, best first.
var ItemConditions = []ItemCondition{
	ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor,
}

// IsValid reports whether the condition is part of the closed set.
func (c ItemCondition) IsValid() bool {
	for _, candidate := range ItemConditions {
		if c == candidate {
			return true
		}
	}
	return false
}

// ExchangeType distinguishes item-for-item swaps from points-settled exchanges.
type ExchangeType string

const (
	ExchangeTypeDirectSwap     ExchangeType = "direct_swap"
	ExchangeTypePointsExchange ExchangeType = "points_exchange"
)

// IsValid reports whether the exchange type is known.
func (t ExchangeType) IsValid() bool {
	return t == ExchangeTypeDirectSwap || t == ExchangeTypePointsExchange
}

// ExchangeStatus is the lifecycle state of an exchange proposal.
type ExchangeStatus string

const (
	ExchangeStatusPending   ExchangeStatus = "pending"
	ExchangeStatusAccepted  ExchangeStatus = "accepted"
	ExchangeStatusRejected  ExchangeStatus = "rejected"
	ExchangeStatusCompleted ExchangeStatus = "completed"
	ExchangeStatusCancelled ExchangeStatus = "cancelled"
)

// exchangeTransitions encodes the allowed lifecycle moves. Rejected, completed
// and cancelled are terminal; a proposal can never return to pending.
var exchangeTransitions = map[ExchangeStatus][]ExchangeStatus{
	ExchangeStatusPending:  {ExchangeStatusAccepted, ExchangeStatusRejected, ExchangeStatusCancelled},
	ExchangeStatusAccepted: {ExchangeStatusCompleted, ExchangeStatusCancelled},
}

// IsValid reports whether the status is known.
func (s ExchangeStatus) IsValid() bool {
	switch s {
	case ExchangeStatusPending, ExchangeStatusAccepted, ExchangeStatusRejected,
		ExchangeStatusCompleted, ExchangeStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from this status.
func (s ExchangeStatus) IsTerminal() bool {
	return len(exchangeTransitions[s]) == 0 && s.IsValid()
}

// CanTransition reports whether moving from s to the target status is allowed.
func (s ExchangeStatus) CanTransition(to ExchangeStatus) bool {
	for _, candidate := range exchangeTransitions[s] {
		if to == candidate {
			return true
		}
	}
	return false
}
