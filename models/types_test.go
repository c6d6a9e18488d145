// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"reflect"
	"testing"
)

func TestNormalizeOptions(t *testing.T) {
	tests := []struct {
		name    string
		in      []RestaurantOption
		want    []RestaurantOption
		wantErr bool
	}{
		{
			name: "trims and keeps order",
			in:   []RestaurantOption{{Name: "  Pizza Place "}, {Name: "Sushi Bar", URL: " https://sushi.example "}},
			want: []RestaurantOption{{Name: "Pizza Place"}, {Name: "Sushi Bar", URL: "https://sushi.example"}},
		},
		{
			name: "drops empty names",
			in:   []RestaurantOption{{Name: "   "}, {Name: "Pizza Place"}, {Name: ""}},
			want: []RestaurantOption{{Name: "Pizza Place"}},
		},
		{
			name:    "rejects duplicates",
			in:      []RestaurantOption{{Name: "Pizza Place"}, {Name: " Pizza Place "}},
			wantErr: true,
		},
		{
			name: "empty input",
			in:   nil,
			want: []RestaurantOption{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeOptions(tt.in)
			if tt.wantErr {
				if err != ErrDuplicateOption {
					t.Errorf("Expected ErrDuplicateOption, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeOptions failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValidPaymentStatus(t *testing.T) {
	for _, s := range []string{PaymentPending, PaymentPaid, PaymentUnpaid} {
		if !ValidPaymentStatus(s) {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "maybe", "PAID"} {
		if ValidPaymentStatus(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}
