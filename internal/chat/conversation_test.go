package chat

import (
	"errors"
	"reflect"
	"testing"

	"github.com/AlexMickh/speak-messenger/internal/errs"
	"github.com/AlexMickh/speak-messenger/internal/models"
)

func conv(isGroup bool, memberIDs, adminIDs []string) models.Conversation {
	c := models.Conversation{
		ID:      "c1",
		IsGroup: isGroup,
	}
	for _, id := range memberIDs {
		c.Users = append(c.Users, models.UserPublic{ID: id})
	}
	for _, id := range adminIDs {
		c.Admins = append(c.Admins, models.UserPublic{ID: id})
	}
	return c
}

func TestNewDraft(t *testing.T) {
	type args struct {
		creatorID string
		userIDs   []string
		adminIDs  []string
	}

	tests := []struct {
		name        string
		args        args
		wantGroup   bool
		wantUsers   []string
		wantAdmins  []string
		wantErrKind errs.Kind
	}{
		{
			name: "group with creator admin",
			args: args{
				creatorID: "1",
				userIDs:   []string{"1", "2", "3"},
				adminIDs:  []string{"1"},
			},
			wantGroup:  true,
			wantUsers:  []string{"1", "2", "3"},
			wantAdmins: []string{"1"},
		},
		{
			name: "two members force direct conversation with no admins",
			args: args{
				creatorID: "1",
				userIDs:   []string{"1", "2"},
				adminIDs:  []string{"1", "2"},
			},
			wantGroup:  false,
			wantUsers:  []string{"1", "2"},
			wantAdmins: nil,
		},
		{
			name: "duplicate ids are normalized",
			args: args{
				creatorID: "1",
				userIDs:   []string{"1", "2", "2", "3", "1"},
				adminIDs:  []string{"1", "1"},
			},
			wantGroup:  true,
			wantUsers:  []string{"1", "2", "3"},
			wantAdmins: []string{"1"},
		},
		{
			name: "fewer than two distinct members",
			args: args{
				creatorID: "1",
				userIDs:   []string{"1", "1"},
			},
			wantErrKind: errs.KindValidation,
		},
		{
			name: "creator outside member set",
			args: args{
				creatorID: "9",
				userIDs:   []string{"1", "2", "3"},
				adminIDs:  []string{"9"},
			},
			wantErrKind: errs.KindValidation,
		},
		{
			name: "creator outside admin set of a group",
			args: args{
				creatorID: "1",
				userIDs:   []string{"1", "2", "3"},
				adminIDs:  []string{"2"},
			},
			wantErrKind: errs.KindValidation,
		},
		{
			name: "admin outside member set",
			args: args{
				creatorID: "1",
				userIDs:   []string{"1", "2", "3"},
				adminIDs:  []string{"1", "9"},
			},
			wantErrKind: errs.KindValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := NewDraft(tt.args.creatorID, nil, nil, tt.args.userIDs, tt.args.adminIDs)
			if tt.wantErrKind != 0 {
				if errs.KindOf(err) != tt.wantErrKind {
					t.Fatalf("NewDraft() error = %v, want kind %v", err, tt.wantErrKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDraft() unexpected error = %v", err)
			}
			if draft.IsGroup != tt.wantGroup {
				t.Errorf("NewDraft() isGroup = %v, want %v", draft.IsGroup, tt.wantGroup)
			}
			if !reflect.DeepEqual(draft.UserIDs, tt.wantUsers) {
				t.Errorf("NewDraft() users = %v, want %v", draft.UserIDs, tt.wantUsers)
			}
			if !reflect.DeepEqual(draft.AdminIDs, tt.wantAdmins) {
				t.Errorf("NewDraft() admins = %v, want %v", draft.AdminIDs, tt.wantAdmins)
			}
		})
	}
}

func TestAddMember(t *testing.T) {
	tests := []struct {
		name        string
		c           models.Conversation
		actorID     string
		userID      string
		wantErrKind errs.Kind
		wantMembers []string
	}{
		{
			name:        "admin adds a new member",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "1",
			userID:      "4",
			wantMembers: []string{"1", "2", "3", "4"},
		},
		{
			name:        "actor not a participant",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "9",
			userID:      "4",
			wantErrKind: errs.KindNotFound,
		},
		{
			name:        "direct conversation",
			c:           conv(false, []string{"1", "2"}, nil),
			actorID:     "1",
			userID:      "3",
			wantErrKind: errs.KindValidation,
		},
		{
			name:        "actor not an admin",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "2",
			userID:      "4",
			wantErrKind: errs.KindUnauthorized,
		},
		{
			name:        "user already a member",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "1",
			userID:      "3",
			wantErrKind: errs.KindConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AddMember(&tt.c, tt.actorID, tt.userID)
			if errs.KindOf(err) != tt.wantErrKind {
				t.Fatalf("AddMember() error = %v, want kind %v", err, tt.wantErrKind)
			}
			if tt.wantErrKind == 0 && !reflect.DeepEqual(tt.c.MemberIDs(), tt.wantMembers) {
				t.Errorf("members = %v, want %v", tt.c.MemberIDs(), tt.wantMembers)
			}
		})
	}
}

func TestRemoveMember(t *testing.T) {
	tests := []struct {
		name        string
		c           models.Conversation
		actorID     string
		userID      string
		wantErrKind errs.Kind
		wantMembers []string
		wantAdmins  []string
	}{
		{
			name:        "removed member loses admin status too",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1", "2"}),
			actorID:     "1",
			userID:      "2",
			wantMembers: []string{"1", "3"},
			wantAdmins:  []string{"1"},
		},
		{
			name:        "self removal is rejected",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "1",
			userID:      "1",
			wantErrKind: errs.KindValidation,
		},
		{
			name:        "target not a member",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "1",
			userID:      "9",
			wantErrKind: errs.KindNotFound,
		},
		{
			name:        "actor not an admin",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "2",
			userID:      "3",
			wantErrKind: errs.KindUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RemoveMember(&tt.c, tt.actorID, tt.userID)
			if errs.KindOf(err) != tt.wantErrKind {
				t.Fatalf("RemoveMember() error = %v, want kind %v", err, tt.wantErrKind)
			}
			if tt.wantErrKind != 0 {
				return
			}
			if !reflect.DeepEqual(tt.c.MemberIDs(), tt.wantMembers) {
				t.Errorf("members = %v, want %v", tt.c.MemberIDs(), tt.wantMembers)
			}
			if !reflect.DeepEqual(tt.c.AdminIDs(), tt.wantAdmins) {
				t.Errorf("admins = %v, want %v", tt.c.AdminIDs(), tt.wantAdmins)
			}
		})
	}
}

func TestLeave(t *testing.T) {
	tests := []struct {
		name        string
		c           models.Conversation
		userID      string
		wantErrKind errs.Kind
	}{
		{
			name:   "regular member leaves",
			c:      conv(true, []string{"1", "2", "3"}, []string{"1"}),
			userID: "2",
		},
		{
			name:   "one of several admins leaves",
			c:      conv(true, []string{"1", "2", "3"}, []string{"1", "2"}),
			userID: "1",
		},
		{
			name:        "sole admin with other members remaining",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			userID:      "1",
			wantErrKind: errs.KindValidation,
		},
		{
			name:   "sole admin who is the last member standing",
			c:      conv(true, []string{"1"}, []string{"1"}),
			userID: "1",
		},
		{
			name:        "direct conversation is not eligible",
			c:           conv(false, []string{"1", "2"}, nil),
			userID:      "1",
			wantErrKind: errs.KindValidation,
		},
		{
			name:        "not a participant",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			userID:      "9",
			wantErrKind: errs.KindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Leave(&tt.c, tt.userID)
			if errs.KindOf(err) != tt.wantErrKind {
				t.Fatalf("Leave() error = %v, want kind %v", err, tt.wantErrKind)
			}
			if tt.wantErrKind == 0 && IsParticipant(tt.c, tt.userID) {
				t.Errorf("user %s still a participant after leaving", tt.userID)
			}
		})
	}
}

func TestGrantAdmin(t *testing.T) {
	tests := []struct {
		name        string
		c           models.Conversation
		actorID     string
		userID      string
		wantErrKind errs.Kind
	}{
		{
			name:    "admin promotes a member",
			c:       conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID: "1",
			userID:  "2",
		},
		{
			name:        "target already an admin",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1", "2"}),
			actorID:     "1",
			userID:      "2",
			wantErrKind: errs.KindConflict,
		},
		{
			name:        "actor not an admin",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "3",
			userID:      "2",
			wantErrKind: errs.KindUnauthorized,
		},
		{
			name:        "target not a member",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "1",
			userID:      "9",
			wantErrKind: errs.KindNotFound,
		},
		{
			name:        "direct conversation",
			c:           conv(false, []string{"1", "2"}, nil),
			actorID:     "1",
			userID:      "2",
			wantErrKind: errs.KindValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GrantAdmin(&tt.c, tt.actorID, tt.userID)
			if errs.KindOf(err) != tt.wantErrKind {
				t.Fatalf("GrantAdmin() error = %v, want kind %v", err, tt.wantErrKind)
			}
			if tt.wantErrKind == 0 && !IsAdmin(tt.c, tt.userID) {
				t.Errorf("user %s is not an admin after grant", tt.userID)
			}
		})
	}
}

func TestRevokeAdmin(t *testing.T) {
	tests := []struct {
		name        string
		c           models.Conversation
		actorID     string
		userID      string
		wantErrKind errs.Kind
	}{
		{
			name:    "admin demotes another admin",
			c:       conv(true, []string{"1", "2", "3"}, []string{"1", "2"}),
			actorID: "1",
			userID:  "2",
		},
		{
			name:        "self revocation regardless of admin count",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1", "2"}),
			actorID:     "2",
			userID:      "2",
			wantErrKind: errs.KindValidation,
		},
		{
			name:        "actor not an admin",
			c:           conv(true, []string{"1", "2", "3"}, []string{"2"}),
			actorID:     "1",
			userID:      "2",
			wantErrKind: errs.KindUnauthorized,
		},
		{
			name:        "target is not an admin",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "1",
			userID:      "2",
			wantErrKind: errs.KindConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RevokeAdmin(&tt.c, tt.actorID, tt.userID)
			if errs.KindOf(err) != tt.wantErrKind {
				t.Fatalf("RevokeAdmin() error = %v, want kind %v", err, tt.wantErrKind)
			}
			if tt.wantErrKind == 0 && IsAdmin(tt.c, tt.userID) {
				t.Errorf("user %s is still an admin after revoke", tt.userID)
			}
		})
	}
}

func TestUpdateInfo(t *testing.T) {
	name := "renamed"

	t.Run("admin updates only supplied fields", func(t *testing.T) {
		img := "http://img"
		c := conv(true, []string{"1", "2", "3"}, []string{"1"})
		c.ImgUrl = &img

		if err := UpdateInfo(&c, "1", &name, nil); err != nil {
			t.Fatalf("UpdateInfo() unexpected error = %v", err)
		}
		if c.Name == nil || *c.Name != name {
			t.Errorf("name = %v, want %q", c.Name, name)
		}
		if c.ImgUrl == nil || *c.ImgUrl != img {
			t.Errorf("imgUrl = %v, want %q", c.ImgUrl, img)
		}
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		c := conv(true, []string{"1", "2", "3"}, []string{"1"})
		err := UpdateInfo(&c, "2", &name, nil)
		if errs.KindOf(err) != errs.KindUnauthorized {
			t.Fatalf("UpdateInfo() error = %v, want unauthorized", err)
		}
	})

	t.Run("direct conversations are immutable", func(t *testing.T) {
		c := conv(false, []string{"1", "2"}, nil)
		err := UpdateInfo(&c, "1", &name, nil)
		if errs.KindOf(err) != errs.KindUnauthorized {
			t.Fatalf("UpdateInfo() error = %v, want unauthorized", err)
		}
	})
}

func TestCanDelete(t *testing.T) {
	tests := []struct {
		name        string
		c           models.Conversation
		actorID     string
		wantErrKind errs.Kind
	}{
		{
			name:    "admin of a group",
			c:       conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID: "1",
		},
		{
			name:        "direct conversation",
			c:           conv(false, []string{"1", "2"}, nil),
			actorID:     "1",
			wantErrKind: errs.KindValidation,
		},
		{
			name:        "non-admin member",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "2",
			wantErrKind: errs.KindUnauthorized,
		},
		{
			name:        "outsider",
			c:           conv(true, []string{"1", "2", "3"}, []string{"1"}),
			actorID:     "9",
			wantErrKind: errs.KindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDelete(tt.c, tt.actorID)
			if errs.KindOf(err) != tt.wantErrKind {
				t.Fatalf("CanDelete() error = %v, want kind %v", err, tt.wantErrKind)
			}
		})
	}
}

// Whatever sequence of successful mutations runs, the structural
// invariants must hold on the resulting snapshot.
func TestInvariantsAfterMutations(t *testing.T) {
	c := conv(true, []string{"1", "2", "3"}, []string{"1"})

	steps := []func() error{
		func() error { return AddMember(&c, "1", "4") },
		func() error { return GrantAdmin(&c, "1", "2") },
		func() error { return RemoveMember(&c, "2", "3") },
		func() error { return RevokeAdmin(&c, "1", "2") },
		func() error { return GrantAdmin(&c, "1", "4") },
		func() error { return Leave(&c, "1") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		for _, id := range c.AdminIDs() {
			if !IsParticipant(c, id) {
				t.Fatalf("step %d: admin %s is outside the member set", i, id)
			}
		}
		if c.IsGroup && len(c.Users) > 1 && len(c.Admins) == 0 {
			t.Fatalf("step %d: governed group lost its last admin", i)
		}
	}
}

func TestKindOfWrappedError(t *testing.T) {
	c := conv(true, []string{"1", "2", "3"}, []string{"1"})
	err := AddMember(&c, "2", "4")
	wrapped := errors.Join(err)
	if errs.KindOf(wrapped) != errs.KindUnauthorized {
		t.Errorf("KindOf(wrapped) = %v, want unauthorized", errs.KindOf(wrapped))
	}
}
