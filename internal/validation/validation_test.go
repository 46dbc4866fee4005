package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportRequest struct {
	Email       string `json:"email" validate:"required,email"`
	StudentName string `json:"studentName" validate:"required,notblank,max=10"`
	Attempts    *int   `json:"attempts,omitempty" validate:"omitempty,gte=0"`
	Mode        string `json:"mode" validate:"omitempty,oneof=normal assignment"`
}

func TestStruct(t *testing.T) {
	negative := -1

	tests := []struct {
		name  string
		input reportRequest
		want  Errors
	}{
		{
			name:  "valid",
			input: reportRequest{Email: "test@example.com", StudentName: "Ana"},
		},
		{
			name:  "valid email with plus",
			input: reportRequest{Email: "user+tag@mail.example.com", StudentName: "Ana", Mode: "assignment"},
		},
		{
			name:  "missing fields",
			input: reportRequest{},
			want: Errors{
				{Field: "email", Message: "is required"},
				{Field: "studentName", Message: "is required"},
			},
		},
		{
			name:  "bad email",
			input: reportRequest{Email: "testexample.com", StudentName: "Ana"},
			want:  Errors{{Field: "email", Message: "must be a valid email address"}},
		},
		{
			name:  "blank name",
			input: reportRequest{Email: "test@example.com", StudentName: "   "},
			want:  Errors{{Field: "studentName", Message: "must not be blank"}},
		},
		{
			name:  "name too long",
			input: reportRequest{Email: "test@example.com", StudentName: "Mary-Jane O'Brien"},
			want:  Errors{{Field: "studentName", Message: "must be at most 10 characters"}},
		},
		{
			name:  "negative attempts",
			input: reportRequest{Email: "test@example.com", StudentName: "Ana", Attempts: &negative},
			want:  Errors{{Field: "attempts", Message: "must be at least 0"}},
		},
		{
			name:  "unknown mode",
			input: reportRequest{Email: "test@example.com", StudentName: "Ana", Mode: "ranked"},
			want:  Errors{{Field: "mode", Message: "must be one of: normal assignment"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			var got Errors
			require.True(t, errors.As(err, &got), "expected validation errors, got %v", err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorsMessage(t *testing.T) {
	err := Errors{{Field: "email", Message: "is required"}, {Field: "studentName", Message: "must not be blank"}}
	assert.Equal(t, "email: is required; studentName: must not be blank", err.Error())
}
