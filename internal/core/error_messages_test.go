package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "invalid pipeline options",
			err:         fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig),
			wantCode:    "CFG001",
			wantMessage: "The cleaning options are invalid",
		},
		{
			name:        "missing rule column",
			err:         fmt.Errorf("email rule: %w: %q", ErrColumnNotFound, "email"),
			wantCode:    "VAL001",
			wantMessage: "A rule column is missing from the file",
		},
		{
			name:        "csv parse error wins over no dataset",
			err:         errors.New("no dataset: record on line 3: wrong number of fields"),
			wantCode:    "FILE002",
			wantMessage: "Rows have an inconsistent number of fields",
		},
		{
			name:        "plain load failure",
			err:         errors.New("no dataset: header row 4 out of range"),
			wantCode:    "IO001",
			wantMessage: "The file could not be read as a table",
		},
		{
			name:        "too many jobs",
			err:         ErrTooManyJobs,
			wantCode:    "JOB001",
			wantMessage: "Too many cleaning jobs in progress",
		},
		{
			name:        "translation timeout is a translation failure",
			err:         errors.New("translate header \"nom\": context deadline exceeded"),
			wantCode:    "TR001",
			wantMessage: "The translation service returned an error",
		},
		{
			name:        "request timeout",
			err:         errors.New("clean: context deadline exceeded"),
			wantCode:    "JOB004",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "malformed request maps correctly",
			err:         errors.New("invalid request: multipart: NextPart: EOF"),
			wantCode:    "REQ001",
			wantMessage: "The request is malformed",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("FILE TOO LARGE"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds maximum size limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("missing chunk file data_3.csv")
	result := FormatUserError(err)

	expected := "A chunk file is missing (Code: IO002). Make sure all ten chunk files are present before combining"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrRunNotFound,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("name rule: %w", ErrColumnNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "A rule column is missing from the file" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, ErrColumnNotFound) {
			t.Error("Unwrap() should return original error")
		}
	})
}
