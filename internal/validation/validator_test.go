package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name  string   `json:"name" validate:"required,max=5"`
	Email string   `json:"email" validate:"required"`
	Tags  []string `json:"tags" validate:"required"`
}

func TestGetValidatorSingleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      signup
		fields  []string
		missing bool
	}{
		{name: "valid", in: signup{Name: "ann", Email: "a@x.io", Tags: []string{}}},
		{name: "missing email", in: signup{Name: "ann", Tags: []string{}}, fields: []string{"email"}, missing: true},
		{name: "nil slice is missing", in: signup{Name: "ann", Email: "a@x.io"}, fields: []string{"tags"}, missing: true},
		{name: "too long", in: signup{Name: "annabel", Email: "a@x.io", Tags: []string{"x"}}, fields: []string{"name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.in)
			if tt.fields == nil {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
			assert.Equal(t, tt.missing, verr.Missing())
		})
	}
}

func TestFieldErrorMessages(t *testing.T) {
	assert.Equal(t, "email is required", FieldError{Field: "email", Tag: "required"}.Error())
	assert.Equal(t, "phone must be at most 12 characters", FieldError{Field: "phone", Tag: "max", Param: "12"}.Error())
}
