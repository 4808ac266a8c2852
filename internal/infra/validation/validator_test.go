package validation

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Count int    `validate:"gte=1"`
}

func TestValidateReportsJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(context.Background(), sample{Email: "nope"})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("got %v, want ErrInvalid", err)
	}
	msg := err.Error()
	for _, field := range []string{"name", "email", "Count"} {
		if !strings.Contains(msg, field) {
			t.Errorf("message %q does not mention %s", msg, field)
		}
	}
}

func TestValidatePassesValidAndNonStruct(t *testing.T) {
	v := New()
	if err := v.Validate(context.Background(), &sample{Name: "a", Count: 1}); err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(context.Background(), "plain"); err != nil {
		t.Fatal(err)
	}
	var nilPtr *sample
	if err := v.Validate(context.Background(), nilPtr); err != nil {
		t.Fatal(err)
	}
}
