package auth

import (
	"tifblog/models"
)

// CanMutate decides whether the acting user may edit or delete the target
// item. Allowed iff the actor authored it. There are no roles, no
// delegation and no shared ownership; this is the entire authorization
// model. Reads are never guarded.
func CanMutate(actingUserID uint, item *models.ContentItem) bool {
	if item == nil {
		return false
	}
	return actingUserID == item.AuthorID
}
