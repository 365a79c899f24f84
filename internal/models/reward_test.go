package models

import (
	"strings"
	"testing"
)

func validAddress() ShippingAddress {
	return ShippingAddress{
		FullName: "Ada Lovelace",
		Line1:    "1 Bark Street",
		City:     "Dogtown",
		State:    "CA",
		Zip:      "90210",
		Country:  "US",
		Phone:    "+1 (555) 123-4567",
	}
}

func TestShippingAddressValid(t *testing.T) {
	if err := validAddress().Validate(); err != nil {
		t.Errorf("Validate() on complete address: %v", err)
	}
}

func TestShippingAddressLine2Optional(t *testing.T) {
	addr := validAddress()
	addr.Line2 = ""
	if err := addr.Validate(); err != nil {
		t.Errorf("Validate() rejected empty line2: %v", err)
	}
}

func TestShippingAddressMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ShippingAddress)
	}{
		{"full_name", func(a *ShippingAddress) { a.FullName = "" }},
		{"line1", func(a *ShippingAddress) { a.Line1 = "  " }},
		{"city", func(a *ShippingAddress) { a.City = "" }},
		{"state", func(a *ShippingAddress) { a.State = "" }},
		{"zip", func(a *ShippingAddress) { a.Zip = "" }},
		{"country", func(a *ShippingAddress) { a.Country = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := validAddress()
			tt.mutate(&addr)
			err := addr.Validate()
			if err == nil {
				t.Fatalf("Validate() accepted address missing %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.name) {
				t.Errorf("error %q does not name field %s", err, tt.name)
			}
		})
	}
}

func TestShippingAddressPhoneDigits(t *testing.T) {
	addr := validAddress()

	addr.Phone = "555-1234"
	if err := addr.Validate(); err == nil {
		t.Error("Validate() accepted a phone with fewer than 10 digits")
	}

	addr.Phone = "(555) 123-4567"
	if err := addr.Validate(); err != nil {
		t.Errorf("Validate() rejected formatted 10-digit phone: %v", err)
	}

	addr.Phone = ""
	if err := addr.Validate(); err == nil {
		t.Error("Validate() accepted an empty phone")
	}
}
