package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelMatching(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"not fitted", NotFitted("scaler"), ErrNotFitted},
		{"already fitted", AlreadyFitted("capper"), ErrAlreadyFitted},
		{"schema", MissingColumns("transform", "Longitude"), ErrSchema},
		{"computation", &ComputationError{Column: "BedroomRatio", Rows: []int{2}}, ErrComputation},
		{"computation set", ComputationErrors{{Column: "A"}}, ErrComputation},
		{"configuration", Configuration("test ratio", "must be in (0, 1)"), ErrConfiguration},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("outer: %w", tc.err)
		if !errors.Is(wrapped, tc.want) {
			t.Fatalf("%s: errors.Is(%v, %v) = false", tc.name, wrapped, tc.want)
		}
	}
}

func TestSchemaErrorNamesColumns(t *testing.T) {
	err := &SchemaError{Op: "transform", Missing: []string{"Longitude"}, Extra: []string{"Foo"}}
	msg := err.Error()
	if !strings.Contains(msg, "Longitude") || !strings.Contains(msg, "Foo") {
		t.Fatalf("message %q should name missing and extra columns", msg)
	}
}

func TestComputationErrorsSortedAndTruncated(t *testing.T) {
	errs := ComputationErrors{
		{Column: "RoomsPerPerson", Rows: []int{0, 1, 2, 3, 4, 5, 6}},
		{Column: "BedroomRatio", Rows: []int{3}},
	}
	msg := errs.Error()
	if strings.Index(msg, "BedroomRatio") > strings.Index(msg, "RoomsPerPerson") {
		t.Fatalf("expected sorted messages, got %q", msg)
	}
	if !strings.Contains(msg, "(+2 more)") {
		t.Fatalf("expected truncation, got %q", msg)
	}
	if got := errs.Columns(); len(got) != 2 {
		t.Fatalf("Columns() = %v", got)
	}
}
