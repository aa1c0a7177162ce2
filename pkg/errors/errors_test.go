package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidSize, "invalid width: %s", "abc")

	if err.Code != ErrCodeInvalidSize {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidSize)
	}

	if err.Message != "invalid width: abc" {
		t.Errorf("Message = %v, want %v", err.Message, "invalid width: abc")
	}

	expected := "INVALID_SIZE: invalid width: abc"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Wrap(ErrCodeInvalidOption, cause, "Invalid Echart Option")

	if err.Code != ErrCodeInvalidOption {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidOption)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeMissingOption, "test"), ErrCodeMissingOption, true},
		{"different code", New(ErrCodeMissingOption, "test"), ErrCodeInvalidOption, false},
		{"wrapped with fmt", fmt.Errorf("resolve: %w", New(ErrCodeInvalidSize, "test")), ErrCodeInvalidSize, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil error", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeNoEncoder, "x")); got != ErrCodeNoEncoder {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeNoEncoder)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeMissingOption, "Missing Echart Option")); got != "Missing Echart Option" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("boom")); got != "boom" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestCauses(t *testing.T) {
	first := errors.New("inline: invalid character 'c'")
	second := errors.New("open chart.json: no such file or directory")

	err := Wrap(ErrCodeInvalidOption, errors.Join(first, second), "Invalid Echart Option")
	got := Causes(err)
	if len(got) != 2 || got[0] != first.Error() || got[1] != second.Error() {
		t.Errorf("Causes() = %v", got)
	}

	single := Wrap(ErrCodeInvalidOption, first, "Invalid Echart Option")
	if got := Causes(single); len(got) != 1 || got[0] != first.Error() {
		t.Errorf("Causes(single) = %v", got)
	}

	if got := Causes(New(ErrCodeMissingOption, "x")); got != nil {
		t.Errorf("Causes(no cause) = %v, want nil", got)
	}
}
