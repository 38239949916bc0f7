package models

import "time"

type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName,omitempty"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	ImgUrl    string    `json:"imgUrl,omitempty"`
	About     string    `json:"about,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserPublic is a user stripped of login data. Everything that leaves
// the auth boundary uses this shape.
type UserPublic struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName,omitempty"`
	ImgUrl    string    `json:"imgUrl,omitempty"`
	About     string    `json:"about,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() UserPublic {
	return UserPublic{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ImgUrl:    u.ImgUrl,
		About:     u.About,
		CreatedAt: u.CreatedAt,
	}
}

// UserUpdate carries a partial profile update. Nil fields stay unchanged.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	ImgUrl    *string
	About     *string
}

type Conversation struct {
	ID        string       `json:"id"`
	Name      *string      `json:"name"`
	ImgUrl    *string      `json:"imgUrl"`
	IsGroup   bool         `json:"isGroup"`
	Users     []UserPublic `json:"users"`
	Admins    []UserPublic `json:"admins"`
	Messages  []Message    `json:"messages"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (c Conversation) MemberIDs() []string {
	ids := make([]string, 0, len(c.Users))
	for _, u := range c.Users {
		ids = append(ids, u.ID)
	}
	return ids
}

func (c Conversation) AdminIDs() []string {
	ids := make([]string, 0, len(c.Admins))
	for _, u := range c.Admins {
		ids = append(ids, u.ID)
	}
	return ids
}

// ConversationDraft is a validated, not yet persisted conversation.
type ConversationDraft struct {
	ID       string
	Name     *string
	ImgUrl   *string
	IsGroup  bool
	UserIDs  []string
	AdminIDs []string
}

type Message struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversationId"`
	SenderID       string       `json:"senderId"`
	Text           *string      `json:"text"`
	ImgUrl         *string      `json:"imgUrl"`
	Deleted        bool         `json:"deleted"`
	ReadBy         []UserPublic `json:"readBy"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type Avatar struct {
	ID   string
	Data []byte
}
