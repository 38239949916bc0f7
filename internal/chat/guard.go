package chat

import "github.com/AlexMickh/speak-messenger/internal/models"

// Stateless predicates over entity snapshots. They never touch storage;
// callers load the snapshot first and decide what to do with the answer.

func IsParticipant(c models.Conversation, userID string) bool {
	for _, u := range c.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func IsAdmin(c models.Conversation, userID string) bool {
	for _, u := range c.Admins {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func IsSender(m models.Message, userID string) bool {
	return m.SenderID == userID
}

func IsSelf(actorID, userID string) bool {
	return actorID == userID
}
