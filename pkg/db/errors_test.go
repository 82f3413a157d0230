package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil error", nil, "", false},
		{
			"postgres message",
			errors.New(`duplicate key value violates unique constraint "users_email_key"`),
			"",
			true,
		},
		{
			"postgres message with matching constraint",
			errors.New(`duplicate key value violates unique constraint "users_email_key"`),
			"users_email_key",
			true,
		},
		{
			"sqlite message with foreign constraint name",
			errors.New("UNIQUE constraint failed: users.email"),
			"users_email_key",
			true,
		},
		{"unrelated error", errors.New("connection reset"), "users_email_key", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v, %q) = %v, want %v", tc.err, tc.constraint, got, tc.want)
			}
		})
	}
}
