package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestErrorString(t *testing.T) {
	err := Errorf("1/0", 2, ErrDivisionByZero, "Division by zero")
	want := "D0204 at position 2: Division by zero"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if err.Kind() != KindFatal {
		t.Errorf("Kind() = %s, want %s", err.Kind(), KindFatal)
	}
	if ErrUnexpectedToken.Kind() != KindSyntax {
		t.Errorf("S0101 Kind() = %s, want %s", ErrUnexpectedToken.Kind(), KindSyntax)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Errorf("", 0, ErrTooManyDice, "Too many dice").WithCause(cause)
	wrapped := fmt.Errorf("roll: %w", err)

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is did not find the cause")
	}
	var derr *Error
	if !errors.As(wrapped, &derr) || derr.Code != ErrTooManyDice {
		t.Errorf("errors.As = %v", derr)
	}
}

func TestLineCol(t *testing.T) {
	tests := []struct {
		src       string
		pos       int
		line, col int
	}{
		{"1d6", 0, 1, 1},
		{"1d6", 2, 1, 3},
		{"1d6\n+ 2", 6, 2, 3},
		{"1d6", 10, 1, 4},
	}

	for _, tt := range tests {
		line, col := (&Error{Source: tt.src, Position: tt.pos}).LineCol()
		if line != tt.line || col != tt.col {
			t.Errorf("LineCol(%q, %d) = %d:%d, want %d:%d", tt.src, tt.pos, line, col, tt.line, tt.col)
		}
	}
}

func TestPrettyPrint(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message before the caret",
			err:  Errorf("1 + 2 + 3 + 4 + 5 + 1/0", 22, ErrDivisionByZero, "Division by zero"),
			want: "1 + 2 + 3 + 4 + 5 + 1/0\n" +
				"     Division by zero ^",
		},
		{
			name: "message after the caret",
			err:  Errorf("1/0", 2, ErrDivisionByZero, "Division by zero"),
			want: "1/0\n" +
				"  ^ Division by zero",
		},
		{
			name: "second line",
			err:  Errorf("1d6\n1/0", 6, ErrDivisionByZero, "Division by zero"),
			want: "1d6\n1/0\n" +
				"  ^ Division by zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, PrettyPrint(tt.err)); diff != "" {
				t.Errorf("PrettyPrint mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if got := PrettyPrint(nil); got != "" {
		t.Errorf("PrettyPrint(nil) = %q, want empty", got)
	}
}
