package chat

import (
	"testing"

	"github.com/AlexMickh/speak-messenger/internal/models"
)

func TestGuards(t *testing.T) {
	c := conv(true, []string{"1", "2", "3"}, []string{"1"})
	msg := models.Message{ID: "m1", SenderID: "2"}

	if !IsParticipant(c, "2") {
		t.Error("IsParticipant(2) = false, want true")
	}
	if IsParticipant(c, "9") {
		t.Error("IsParticipant(9) = true, want false")
	}
	if !IsAdmin(c, "1") {
		t.Error("IsAdmin(1) = false, want true")
	}
	if IsAdmin(c, "2") {
		t.Error("IsAdmin(2) = true, want false")
	}
	if !IsSender(msg, "2") {
		t.Error("IsSender(2) = false, want true")
	}
	if IsSender(msg, "1") {
		t.Error("IsSender(1) = true, want false")
	}
	if !IsSelf("1", "1") || IsSelf("1", "2") {
		t.Error("IsSelf misbehaves")
	}
}
