package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "SecurePass12!", false},
		{"Exactly Min Length", "Abcde1!x", false},
		{"Exactly Max Length", "A" + strings.Repeat("b", 23) + "1!", false},
		{"Empty", "", true},
		{"Too Short", "Sma1!", true},
		{"Too Long", "A" + strings.Repeat("b", 24) + "1!", true},
		{"No Upper", "securepass12!", true},
		{"No Lower", "SECUREPASS12!", true},
		{"No Digit", "SecurePass!!", true},
		{"No Special", "SecurePass123", true},
		{"Unicode Characters", "ÅngstromPass12!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "jane", false},
		{"Two Chars", "jo", false},
		{"Too Short", "j", true},
		{"Only Spaces", "    ", true},
		{"Too Long", strings.Repeat("a", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "jane doe", NormalizeUsername("  Jane Doe "))
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "user@example.com", false},
		{"Surrounding Spaces", "  user@example.com ", false},
		{"Missing At", "userexample.com", true},
		{"Missing TLD", "user@example", true},
		{"Too Short", "a@b", true},
		{"Too Long", strings.Repeat("a", 95) + "@x.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostFieldValidation(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidatePostTitle("Go tips"))
	assert.EqualError(t, ValidatePostTitle("G"), "title must be at least 2 characters long")
	assert.EqualError(t, ValidatePostTitle(strings.Repeat("x", 101)), "title must not exceed 100 characters")

	assert.NoError(t, ValidatePostDescription("ten chars!"))
	assert.EqualError(t, ValidatePostDescription("too short"), "description must be at least 10 characters long")

	assert.EqualError(t, ValidateCategory("category", " "), "category is required")
}

func TestFirst(t *testing.T) {
	t.Parallel()
	err := First(nil, ValidatePostTitle(""), ValidatePostDescription(""))
	assert.EqualError(t, err, "title is required")
	assert.NoError(t, First(nil, nil))
}
