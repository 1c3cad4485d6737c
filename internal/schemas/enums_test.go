package schemas

import "testing"

func TestExchangeStatusTransitions(t *testing.T) {
	testCases := []struct {
		from    ExchangeStatus
		to      ExchangeStatus
		allowed bool
	}{
		{ExchangeStatusPending, ExchangeStatusAccepted, true},
		{ExchangeStatusPending, ExchangeStatusRejected, true},
		{ExchangeStatusPending, ExchangeStatusCancelled, true},
		{ExchangeStatusPending, ExchangeStatusCompleted, false},
		{ExchangeStatusAccepted, ExchangeStatusCompleted, true},
		{ExchangeStatusAccepted, ExchangeStatusCancelled, true},
		{ExchangeStatusAccepted, ExchangeStatusRejected, false},
		{ExchangeStatusAccepted, ExchangeStatusPending, false},
		{ExchangeStatusRejected, ExchangeStatusAccepted, false},
		{ExchangeStatusCompleted, ExchangeStatusCancelled, false},
		{ExchangeStatusCancelled, ExchangeStatusPending, false},
	}

	for _, tc := range testCases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestExchangeStatusTerminal(t *testing.T) {
	terminal := []ExchangeStatus{ExchangeStatusRejected, ExchangeStatusCompleted, ExchangeStatusCancelled}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Errorf("expected %s to be terminal", status)
		}
	}

	for _, status := range []ExchangeStatus{ExchangeStatusPending, ExchangeStatusAccepted} {
		if status.IsTerminal() {
			t.Errorf("expected %s not to be terminal", status)
		}
	}
}

func TestExchangeStatusIsValid(t *testing.T) {
	if ExchangeStatus("shipped").IsValid() {
		t.Error("unknown status should not be valid")
	}
	if ExchangeStatus("shipped").IsTerminal() {
		t.Error("unknown status should not be terminal")
	}
	if !ExchangeStatusPending.IsValid() {
		t.Error("pending should be valid")
	}
}

func TestItemEnums(t *testing.T) {
	for _, category := range ItemCategories {
		if !category.IsValid() {
			t.Errorf("expected category %s to be valid", category)
		}
	}
	if ItemCategory("hats").IsValid() {
		t.Error("unknown category should not be valid")
	}

	for _, condition := range ItemConditions {
		if !condition.IsValid() {
			t.Errorf("expected condition %s to be valid", condition)
		}
	}
	if ItemCondition("worn_once").IsValid() {
		t.Error("unknown condition should not be valid")
	}
}

func TestExchangeTypeIsValid(t *testing.T) {
	if !ExchangeTypeDirectSwap.IsValid() || !ExchangeTypePointsExchange.IsValid() {
		t.Error("known exchange types should be valid")
	}
	if ExchangeType("gift").IsValid() {
		t.Error("unknown exchange type should not be valid")
	}
}
