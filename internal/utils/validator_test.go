package utils

import (
	"testing"

	"rewear-server/internal/schemas"
)

func TestRegistrationRequestValidation(t *testing.T) {
	validate := GetValidator().Validate

	testCases := []struct {
		name    string
		request schemas.RegistrationRequest
		valid   bool
	}{
		{
			"Valid",
			schemas.RegistrationRequest{Username: "swapper_01", Email: "swapper@example.com", Password: "test.Password123", FullName: "Swap Per"},
			true,
		},
		{
			"UsernameWithSpaces",
			schemas.RegistrationRequest{Username: "swap per", Email: "swapper@example.com", Password: "test.Password123"},
			false,
		},
		{
			"UsernameTooLong",
			schemas.RegistrationRequest{Username: "thisusernameiswaytoolong", Email: "swapper@example.com", Password: "test.Password123"},
			false,
		},
		{
			"PasswordWithoutNumber",
			schemas.RegistrationRequest{Username: "swapper", Email: "swapper@example.com", Password: "test.Password"},
			false,
		},
		{
			"PasswordWithoutSpecialChar",
			schemas.RegistrationRequest{Username: "swapper", Email: "swapper@example.com", Password: "testPassword123"},
			false,
		},
		{
			"PasswordTooShort",
			schemas.RegistrationRequest{Username: "swapper", Email: "swapper@example.com", Password: "t.P1"},
			false,
		},
		{
			"InvalidEmail",
			schemas.RegistrationRequest{Username: "swapper", Email: "not-an-email", Password: "test.Password123"},
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Struct(tc.request)
			if tc.valid && err != nil {
				t.Errorf("expected request to be valid, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected request to be invalid")
			}
		})
	}
}

func TestCreateItemRequestValidation(t *testing.T) {
	validate := GetValidator().Validate

	validRequest := func() schemas.CreateItemRequest {
		return schemas.CreateItemRequest{
			Title:       "Denim Jacket",
			Description: "Lightly worn",
			Category:    "outerwear",
			Condition:   "good",
			Size:        "M",
			PricePoints: 30,
		}
	}

	if err := validate.Struct(validRequest()); err != nil {
		t.Errorf("expected request to be valid, got %v", err)
	}

	unknownCategory := validRequest()
	unknownCategory.Category = "spacesuits"
	if err := validate.Struct(unknownCategory); err == nil {
		t.Error("expected unknown category to be rejected")
	}

	unknownCondition := validRequest()
	unknownCondition.Condition = "torn"
	if err := validate.Struct(unknownCondition); err == nil {
		t.Error("expected unknown condition to be rejected")
	}

	negativePoints := validRequest()
	negativePoints.PricePoints = -5
	if err := validate.Struct(negativePoints); err == nil {
		t.Error("expected negative points to be rejected")
	}
}

func TestCreateExchangeRequestValidation(t *testing.T) {
	validate := GetValidator().Validate

	valid := schemas.CreateExchangeRequest{
		ItemID:       "0b7f9a1e-64a5-4c11-9cf0-7f1dd7f2134b",
		ExchangeType: "points_exchange",
	}
	if err := validate.Struct(valid); err != nil {
		t.Errorf("expected request to be valid, got %v", err)
	}

	badId := valid
	badId.ItemID = "not-a-uuid"
	if err := validate.Struct(badId); err == nil {
		t.Error("expected invalid item id to be rejected")
	}

	badType := valid
	badType.ExchangeType = "barter"
	if err := validate.Struct(badType); err == nil {
		t.Error("expected unknown exchange type to be rejected")
	}
}
