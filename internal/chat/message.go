package chat

import (
	"github.com/AlexMickh/speak-messenger/internal/errs"
	"github.com/AlexMickh/speak-messenger/internal/models"
)

// Edit applies a partial text/image update by the sender. Deleted
// messages are immutable. The readBy set is never touched here.
func Edit(m *models.Message, actorID string, text, imgUrl *string) error {
	if !IsSender(*m, actorID) {
		return errs.Unauthorized("user is not authorized to make this request")
	}
	if m.Deleted {
		return errs.Unauthorized("you can't edit a deleted message")
	}
	if text != nil {
		m.Text = text
	}
	if imgUrl != nil {
		m.ImgUrl = imgUrl
	}
	return nil
}

// SoftDelete marks the message deleted and clears its content. The row
// and its read receipts survive as a deletion marker. Deleting an
// already deleted message is a no-op.
func SoftDelete(m *models.Message, actorID string) error {
	if !IsSender(*m, actorID) {
		return errs.Unauthorized("user is not authorized to make this request")
	}
	m.Deleted = true
	m.Text = nil
	m.ImgUrl = nil
	return nil
}
