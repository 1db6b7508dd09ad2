package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("adding item: %w", NewValidationError("item", "This field is required"))
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is must match wrapped ErrValidation")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As must find *ValidationError")
	}
	if ve.Fields["item"] != "This field is required" {
		t.Errorf("unexpected field message: %q", ve.Fields["item"])
	}
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"price": "Must be greater than or equal to 0",
		"brand": "This field is required",
	}}
	want := "validation failed: brand: This field is required; price: Must be greater than or equal to 0"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestQuantityOutOfRangeError(t *testing.T) {
	err := &QuantityOutOfRangeError{ItemID: 3, Requested: 7, Available: 5}
	if !errors.Is(err, ErrQuantityOutOfRange) {
		t.Fatal("errors.Is must match ErrQuantityOutOfRange")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatal("quantity error must not match ErrValidation")
	}
	want := "quantity out of range for item 3: requested 7, available 5"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
