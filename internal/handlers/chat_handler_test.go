package handlers

import (
	"strings"
	"testing"
)

func TestAssistantResponse(t *testing.T) {
	testCases := []struct {
		name     string
		message  string
		contains string
	}{
		{"Greeting", "Hello there!", "ReWear assistant"},
		{"Points", "How do POINTS work?", "earn points"},
		{"Swap", "I want to swap my jacket", "propose an exchange"},
		{"Listing", "How do I list an item?", "add a title"},
		{"Sizing", "Is this size accurate?", "free text"},
		{"Shipping", "Who pays for shipping?", "arranged between"},
		{"Thanks", "thank you!", "welcome"},
		{"Fallback", "what is the meaning of life", "Could you tell me a bit more"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			response := assistantResponse(tc.message)
			if !strings.Contains(response, tc.contains) {
				t.Errorf("response %q does not contain %q", response, tc.contains)
			}
		})
	}
}
