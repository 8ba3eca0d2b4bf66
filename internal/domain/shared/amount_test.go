package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"2.4", "2"},
		{"2.5", "3"},
		{"2.49", "2"},
		{"1234.5", "1235"},
		{"-2.5", "-2"},
		{"-2.6", "-3"},
		{"6000", "6000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundAmount(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestWithinEpsilon(t *testing.T) {
	d := decimal.RequireFromString
	assert.True(t, WithinEpsilon(d("100"), d("100")))
	assert.True(t, WithinEpsilon(d("100"), d("100.009")))
	assert.True(t, WithinEpsilon(d("100.009"), d("100")))
	assert.False(t, WithinEpsilon(d("100"), d("100.01")))
	assert.False(t, WithinEpsilon(d("100"), d("99")))
}

func TestDomainError_IsMatchesCode(t *testing.T) {
	custom := ErrForbidden.WithMessage("Only admins")

	assert.True(t, errors.Is(custom, ErrForbidden))
	assert.False(t, errors.Is(custom, ErrUnauthorized))
	assert.Equal(t, "Only admins", custom.Error())
	assert.Equal(t, "Access to this resource is forbidden", ErrForbidden.Error())

	wrapped := fmt.Errorf("failed to load: %w", custom)
	assert.ErrorIs(t, wrapped, ErrForbidden)
}

func TestCaller_RequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		caller  Caller
		wantErr error
	}{
		{"admin", Caller{UserID: uuid.New(), Role: RoleAdmin}, nil},
		{"supervisor", Caller{UserID: uuid.New(), Role: RoleSupervisor}, ErrForbidden},
		{"anonymous admin role", Caller{Role: RoleAdmin}, ErrUnauthorized},
		{"empty", Caller{}, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.caller.RequireAdmin()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.True(t, tt.caller.IsAdmin())
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, tt.caller.IsAdmin())
		})
	}
}

func TestCaller_RequireAuthenticated(t *testing.T) {
	assert.NoError(t, Caller{UserID: uuid.New(), Role: RoleSupervisor}.RequireAuthenticated())
	assert.NoError(t, Caller{UserID: uuid.New(), Role: RoleAdmin}.RequireAuthenticated())
	assert.ErrorIs(t, Caller{UserID: uuid.New(), Role: "guest"}.RequireAuthenticated(), ErrUnauthorized)
	assert.ErrorIs(t, Caller{Role: RoleSupervisor}.RequireAuthenticated(), ErrUnauthorized)
}
