package auth

import (
	"testing"

	"tifblog/models"

	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	tests := []struct {
		name     string
		actingID uint
		item     *models.ContentItem
		allowed  bool
	}{
		{
			name:     "author may mutate own post",
			actingID: 1,
			item:     &models.ContentItem{AuthorID: 1, Kind: models.KindPost},
			allowed:  true,
		},
		{
			name:     "author may mutate own comment",
			actingID: 7,
			item:     &models.ContentItem{AuthorID: 7, Kind: models.KindComment},
			allowed:  true,
		},
		{
			name:     "other user denied",
			actingID: 2,
			item:     &models.ContentItem{AuthorID: 1, Kind: models.KindPost},
			allowed:  false,
		},
		{
			name:     "zero acting id denied against real author",
			actingID: 0,
			item:     &models.ContentItem{AuthorID: 1, Kind: models.KindPost},
			allowed:  false,
		},
		{
			name:     "nil item denied",
			actingID: 1,
			item:     nil,
			allowed:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanMutate(tt.actingID, tt.item))
		})
	}
}
