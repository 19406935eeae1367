package policy

import (
	"testing"

	"scribe/internal/auth"
	"scribe/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPolicies(t *testing.T) {
	t.Parallel()

	owner := &auth.Identity{UserID: 1}
	stranger := &auth.Identity{UserID: 2}
	admin := &auth.Identity{UserID: 3, IsAdmin: true}

	tests := []struct {
		name   string
		check  Check
		caller *auth.Identity
		want   string
	}{
		{"public anonymous", Public, nil, ""},
		{"authenticated anonymous", Authenticated, nil, models.CodeUnauthorized},
		{"authenticated user", Authenticated, stranger, ""},
		{"admin anonymous", Admin, nil, models.CodeUnauthorized},
		{"admin regular user", Admin, owner, models.CodeForbidden},
		{"admin admin", Admin, admin, ""},
		{"self anonymous", Self, nil, models.CodeUnauthorized},
		{"self holder", Self, owner, ""},
		{"self admin", Self, admin, models.CodeForbidden},
		{"owner anonymous", Owner, nil, models.CodeUnauthorized},
		{"owner owner", Owner, owner, ""},
		{"owner stranger", Owner, stranger, models.CodeForbidden},
		{"owner admin not exempt", Owner, admin, models.CodeForbidden},
		{"owner-or-admin anonymous", OwnerOrAdmin, nil, models.CodeUnauthorized},
		{"owner-or-admin owner", OwnerOrAdmin, owner, ""},
		{"owner-or-admin stranger", OwnerOrAdmin, stranger, models.CodeForbidden},
		{"owner-or-admin admin", OwnerOrAdmin, admin, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.caller, owner.UserID)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, models.IsCode(err, tt.want), "got %v", err)
		})
	}
}
