package validation

import (
	"strings"
	"testing"
)

type borrowPayload struct {
	BookID  int64  `json:"book_id" validate:"required,gt=0"`
	DueDate string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	if err := v.Validate(&borrowPayload{BookID: 3, DueDate: "2024-06-15"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(&borrowPayload{BookID: 3}); err != nil {
		t.Fatalf("optional field should be allowed empty: %v", err)
	}
}

func TestValidate_FlattensFieldErrors(t *testing.T) {
	v := New()
	err := v.Validate(&borrowPayload{BookID: 0, DueDate: "not-a-date"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "BookID") || !strings.Contains(msg, "DueDate") {
		t.Fatalf("message should name the failed fields, got %q", msg)
	}
}
