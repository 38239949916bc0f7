// Package chat is the conversation membership and authorization engine.
// Every function here is a pure state transition over a snapshot: it
// checks the actor's relationship to the conversation, enforces the
// structural invariants (admins are members, a governed group keeps at
// least one admin) and mutates the snapshot in memory. Persistence,
// locking and lookups belong to the caller.
package chat

import (
	"github.com/AlexMickh/speak-messenger/internal/errs"
	"github.com/AlexMickh/speak-messenger/internal/models"
)

// NewDraft validates creation input and derives the group flag and the
// effective admin set. A conversation with exactly two members is a
// direct conversation: no admins, whatever the caller supplied.
func NewDraft(
	creatorID string,
	name *string,
	imgUrl *string,
	userIDs []string,
	adminIDs []string,
) (models.ConversationDraft, error) {
	users := dedupe(userIDs)
	if len(users) < 2 {
		return models.ConversationDraft{}, errs.Validation(
			"there have to be at least two users to create a conversation",
		)
	}
	if !contains(users, creatorID) {
		return models.ConversationDraft{}, errs.Validation(
			"userIds must contain the id of the user creating a conversation",
		)
	}

	admins := dedupe(adminIDs)
	isGroup := len(users) > 2
	if isGroup {
		if !contains(admins, creatorID) {
			return models.ConversationDraft{}, errs.Validation(
				"adminIds must contain the id of the user creating a conversation",
			)
		}
		for _, id := range admins {
			if !contains(users, id) {
				return models.ConversationDraft{}, errs.Validation(
					"user ids do not match the admin ids",
				)
			}
		}
	} else {
		admins = nil
	}

	return models.ConversationDraft{
		Name:     name,
		ImgUrl:   imgUrl,
		IsGroup:  isGroup,
		UserIDs:  users,
		AdminIDs: admins,
	}, nil
}

// AddMember lets an admin add userID to a group conversation.
func AddMember(c *models.Conversation, actorID, userID string) error {
	if !IsParticipant(*c, actorID) {
		return errs.NotFoundf(
			"either conversation with id %s wasn't found or admin with id %s is not part of this group conversation",
			c.ID, actorID,
		)
	}
	if !c.IsGroup {
		return errs.Validation("this is not a group conversation")
	}
	if !IsAdmin(*c, actorID) {
		return errs.Unauthorized("only admins have permission to add users")
	}
	if IsParticipant(*c, userID) {
		return errs.Conflict("this user is already in this group")
	}

	c.Users = append(c.Users, models.UserPublic{ID: userID})
	return nil
}

// RemoveMember lets an admin remove somebody else from a group
// conversation. The removed user also loses any admin status.
// Self-removal must go through Leave.
func RemoveMember(c *models.Conversation, actorID, userID string) error {
	if IsSelf(actorID, userID) {
		return errs.Validation("you can't leave the group this way, use the leave endpoint")
	}
	if !IsParticipant(*c, userID) {
		return errs.NotFoundf(
			"either conversation with id %s wasn't found or user with id %s is not part of this group conversation",
			c.ID, userID,
		)
	}
	if !c.IsGroup {
		return errs.Validation("this is not a group conversation")
	}
	if !IsAdmin(*c, actorID) {
		return errs.Unauthorized("only admins have permission to remove users")
	}

	removeUser(&c.Users, userID)
	removeUser(&c.Admins, userID)
	return nil
}

// Leave removes userID from a group conversation at their own request.
// The sole admin cannot leave while other members remain, otherwise the
// group would be left ungoverned.
func Leave(c *models.Conversation, userID string) error {
	if !IsParticipant(*c, userID) {
		return errs.NotFoundf(
			"either conversation with id %s wasn't found or user with id %s is not part of this group conversation",
			c.ID, userID,
		)
	}
	if !c.IsGroup {
		return errs.Validation("this is not a group conversation")
	}
	if IsAdmin(*c, userID) && len(c.Admins) == 1 && len(c.Users) > 1 {
		return errs.Validation(
			"you're trying to leave the group as the only admin, grant admin rights to another user first",
		)
	}

	removeUser(&c.Users, userID)
	removeUser(&c.Admins, userID)
	return nil
}

// GrantAdmin promotes a member of a group conversation.
func GrantAdmin(c *models.Conversation, actorID, userID string) error {
	if !IsParticipant(*c, userID) {
		return errs.NotFoundf(
			"either conversation with id %s wasn't found or user with id %s is not part of this group conversation",
			c.ID, userID,
		)
	}
	if !c.IsGroup {
		return errs.Validation("this is not a group conversation")
	}
	if !IsAdmin(*c, actorID) {
		return errs.Unauthorized("only admins have permission to grant admin status to users")
	}
	if IsAdmin(*c, userID) {
		return errs.Conflict("this user is already an admin")
	}

	c.Admins = append(c.Admins, models.UserPublic{ID: userID})
	return nil
}

// RevokeAdmin demotes another admin. Self-revocation is disallowed and a
// group conversation must always retain at least one admin.
func RevokeAdmin(c *models.Conversation, actorID, userID string) error {
	if IsSelf(actorID, userID) {
		return errs.Validation("you can't remove admin status for yourself")
	}
	if !IsParticipant(*c, userID) {
		return errs.NotFoundf(
			"either conversation with id %s wasn't found or user with id %s is not part of this group conversation",
			c.ID, userID,
		)
	}
	if !c.IsGroup {
		return errs.Validation("this is not a group conversation")
	}
	if !IsAdmin(*c, actorID) {
		return errs.Unauthorized("only admins have permission to remove user admin status")
	}
	if !IsAdmin(*c, userID) {
		return errs.Conflict("this user is already not an admin")
	}
	if len(c.Admins) == 1 {
		return errs.Validation("there must be at least one admin in a group conversation")
	}

	removeUser(&c.Admins, userID)
	return nil
}

// UpdateInfo applies a partial title/image update on behalf of an admin.
// Direct conversations have no admins, so their info is immutable.
func UpdateInfo(c *models.Conversation, actorID string, name, imgUrl *string) error {
	if !IsAdmin(*c, actorID) {
		return errs.Unauthorizedf(
			"user with id %s is not an admin of this group conversation", actorID,
		)
	}
	if name != nil {
		c.Name = name
	}
	if imgUrl != nil {
		c.ImgUrl = imgUrl
	}
	return nil
}

// CanDelete gates permanent deletion of a group conversation.
func CanDelete(c models.Conversation, actorID string) error {
	if !IsParticipant(c, actorID) {
		return errs.NotFoundf(
			"either conversation with id %s wasn't found or user with id %s is not part of this group conversation",
			c.ID, actorID,
		)
	}
	if !c.IsGroup {
		return errs.Validation("you can only delete a group conversation")
	}
	if !IsAdmin(c, actorID) {
		return errs.Unauthorized("only admins have permission to delete group conversations")
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeUser(users *[]models.UserPublic, id string) {
	for i, u := range *users {
		if u.ID == id {
			*users = append((*users)[:i], (*users)[i+1:]...)
			return
		}
	}
}
