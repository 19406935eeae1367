package database

import (
	"testing"

	modelspkg "scribe/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesLikeTable(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*modelspkg.PostLike); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include PostLike")
}
