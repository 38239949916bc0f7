package postgres

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/AlexMickh/speak-messenger/internal/models"
	"github.com/AlexMickh/speak-messenger/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestStorage_SaveUser(t *testing.T) {
	type fields struct {
		db Postgres
	}
	type args struct {
		ctx  context.Context
		user models.User
	}

	pool := initStorage()
	defer pool.Close()

	id := uuid.NewString()
	email := uuid.NewString() + "@test.com"

	tests := []struct {
		name    string
		fields  fields
		args    args
		wantErr error
	}{
		{
			name: "good case",
			fields: fields{
				db: pool,
			},
			args: args{
				ctx: context.Background(),
				user: models.User{
					ID:        id,
					FirstName: "Alice",
					Email:     email,
					Password:  "hash",
				},
			},
			wantErr: nil,
		},
		{
			name: "not unique email",
			fields: fields{
				db: pool,
			},
			args: args{
				ctx: context.Background(),
				user: models.User{
					ID:        uuid.NewString(),
					FirstName: "Alice",
					Email:     email,
					Password:  "hash",
				},
			},
			wantErr: storage.ErrUserAlreadyExists,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Storage{
				db: tt.fields.db,
			}
			if err := s.SaveUser(tt.args.ctx, tt.args.user); err != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Storage.SaveUser() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
	for _, tt := range tests {
		_, _ = pool.Exec(context.Background(), "DELETE FROM users WHERE id = $1", tt.args.user.ID)
	}
}

func TestStorage_GetUserByID(t *testing.T) {
	type fields struct {
		db Postgres
	}
	type args struct {
		ctx context.Context
		id  string
	}

	pool := initStorage()
	defer pool.Close()

	user := models.User{
		ID:        uuid.NewString(),
		FirstName: "Bob",
		LastName:  "Miller",
		Email:     uuid.NewString() + "@test.com",
		Password:  "hash",
		About:     "hi",
	}
	_, err := pool.Exec(
		context.Background(),
		`INSERT INTO users (id, first_name, last_name, email, password, img_url, about)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.FirstName, user.LastName, user.Email, user.Password, user.ImgUrl, user.About,
	)
	if err != nil {
		fmt.Printf("err: %v", err)
		return
	}

	tests := []struct {
		name    string
		fields  fields
		args    args
		want    models.User
		wantErr error
	}{
		{
			name: "good case",
			fields: fields{
				db: pool,
			},
			args: args{
				ctx: context.Background(),
				id:  user.ID,
			},
			want:    user,
			wantErr: nil,
		},
		{
			name: "id does not exists",
			fields: fields{
				db: pool,
			},
			args: args{
				ctx: context.Background(),
				id:  uuid.NewString(),
			},
			want:    models.User{},
			wantErr: storage.ErrUserNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Storage{
				db: tt.fields.db,
			}
			got, err := s.GetUserByID(tt.args.ctx, tt.args.id)
			if err != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Storage.GetUserByID() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			got.CreatedAt = tt.want.CreatedAt
			got.UpdatedAt = tt.want.UpdatedAt
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Storage.GetUserByID() = %#v, want %#v", got, tt.want)
			}
		})
	}
	_, _ = pool.Exec(context.Background(), "DELETE FROM users WHERE id = $1", user.ID)
}

func TestStorage_MutateConversation(t *testing.T) {
	pool := initStorage()
	defer pool.Close()
	s := &Storage{db: pool}
	ctx := context.Background()

	userIDs := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	for _, id := range userIDs {
		_, err := pool.Exec(
			ctx,
			"INSERT INTO users (id, first_name, email, password) VALUES ($1, $2, $3, $4)",
			id, "user", id+"@test.com", "hash",
		)
		if err != nil {
			fmt.Printf("err: %v", err)
			return
		}
	}
	defer func() {
		for _, id := range userIDs {
			_, _ = pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
		}
	}()

	name := "group"
	draft := models.ConversationDraft{
		ID:       uuid.NewString(),
		Name:     &name,
		IsGroup:  true,
		UserIDs:  userIDs,
		AdminIDs: userIDs[:1],
	}
	conv, err := s.SaveConversation(ctx, draft)
	if err != nil {
		t.Fatalf("Storage.SaveConversation() error = %v", err)
	}
	defer func() {
		_, _ = pool.Exec(ctx, "DELETE FROM conversations WHERE id = $1", draft.ID)
	}()

	if !reflect.DeepEqual(memberIDsOf(conv.Users), userIDs) {
		t.Errorf("Storage.SaveConversation() members = %v, want %v", memberIDsOf(conv.Users), userIDs)
	}

	got, err := s.MutateConversation(ctx, draft.ID, func(c *models.Conversation) error {
		c.Users = c.Users[:2]
		return nil
	})
	if err != nil {
		t.Fatalf("Storage.MutateConversation() error = %v", err)
	}
	if !reflect.DeepEqual(memberIDsOf(got.Users), userIDs[:2]) {
		t.Errorf("Storage.MutateConversation() members = %v, want %v", memberIDsOf(got.Users), userIDs[:2])
	}

	_, err = s.MutateConversation(ctx, uuid.NewString(), func(c *models.Conversation) error { return nil })
	if !errors.Is(err, storage.ErrConversationNotFound) {
		t.Errorf("Storage.MutateConversation() error = %v, wantErr %v", err, storage.ErrConversationNotFound)
	}
}

func TestStorage_MarkMessageRead(t *testing.T) {
	pool := initStorage()
	defer pool.Close()
	s := &Storage{db: pool}
	ctx := context.Background()

	sender := uuid.NewString()
	reader := uuid.NewString()
	outsider := uuid.NewString()
	for _, id := range []string{sender, reader, outsider} {
		_, err := pool.Exec(
			ctx,
			"INSERT INTO users (id, first_name, email, password) VALUES ($1, $2, $3, $4)",
			id, "user", id+"@test.com", "hash",
		)
		if err != nil {
			fmt.Printf("err: %v", err)
			return
		}
	}
	defer func() {
		for _, id := range []string{sender, reader, outsider} {
			_, _ = pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
		}
	}()

	conv, err := s.SaveConversation(ctx, models.ConversationDraft{
		ID:      uuid.NewString(),
		UserIDs: []string{sender, reader},
	})
	if err != nil {
		t.Fatalf("Storage.SaveConversation() error = %v", err)
	}
	defer func() {
		_, _ = pool.Exec(ctx, "DELETE FROM conversations WHERE id = $1", conv.ID)
	}()

	text := "hello"
	msg, err := s.SaveMessage(ctx, models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       sender,
		Text:           &text,
	})
	if err != nil {
		t.Fatalf("Storage.SaveMessage() error = %v", err)
	}
	if !reflect.DeepEqual(memberIDsOf(msg.ReadBy), []string{sender}) {
		t.Errorf("Storage.SaveMessage() readBy = %v, want %v", memberIDsOf(msg.ReadBy), []string{sender})
	}

	got, err := s.MarkMessageRead(ctx, reader, msg.ID)
	if err != nil {
		t.Fatalf("Storage.MarkMessageRead() error = %v", err)
	}
	if !reflect.DeepEqual(memberIDsOf(got.ReadBy), []string{sender, reader}) {
		t.Errorf("Storage.MarkMessageRead() readBy = %v, want %v", memberIDsOf(got.ReadBy), []string{sender, reader})
	}

	// reading twice adds nothing
	got, err = s.MarkMessageRead(ctx, reader, msg.ID)
	if err != nil {
		t.Fatalf("Storage.MarkMessageRead() error = %v", err)
	}
	if len(got.ReadBy) != 2 {
		t.Errorf("Storage.MarkMessageRead() readBy = %v, want 2 readers", memberIDsOf(got.ReadBy))
	}

	_, err = s.MarkMessageRead(ctx, outsider, msg.ID)
	if !errors.Is(err, storage.ErrMessageNotFound) {
		t.Errorf("Storage.MarkMessageRead() error = %v, wantErr %v", err, storage.ErrMessageNotFound)
	}
}

func TestStorage_DeleteUserCascades(t *testing.T) {
	pool := initStorage()
	defer pool.Close()
	s := &Storage{db: pool}
	ctx := context.Background()

	keeper := uuid.NewString()
	leaver := uuid.NewString()
	third := uuid.NewString()
	for _, id := range []string{keeper, leaver, third} {
		_, err := pool.Exec(
			ctx,
			"INSERT INTO users (id, first_name, email, password) VALUES ($1, $2, $3, $4)",
			id, "user", id+"@test.com", "hash",
		)
		if err != nil {
			fmt.Printf("err: %v", err)
			return
		}
	}
	defer func() {
		for _, id := range []string{keeper, third} {
			_, _ = pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
		}
	}()

	conv, err := s.SaveConversation(ctx, models.ConversationDraft{
		ID:       uuid.NewString(),
		IsGroup:  true,
		UserIDs:  []string{keeper, leaver, third},
		AdminIDs: []string{keeper, leaver},
	})
	if err != nil {
		t.Fatalf("Storage.SaveConversation() error = %v", err)
	}
	defer func() {
		_, _ = pool.Exec(ctx, "DELETE FROM conversations WHERE id = $1", conv.ID)
	}()

	text := "bye"
	msg, err := s.SaveMessage(ctx, models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       keeper,
		Text:           &text,
	})
	if err != nil {
		t.Fatalf("Storage.SaveMessage() error = %v", err)
	}
	if _, err = s.MarkMessageRead(ctx, leaver, msg.ID); err != nil {
		t.Fatalf("Storage.MarkMessageRead() error = %v", err)
	}

	if err = s.DeleteUser(ctx, leaver); err != nil {
		t.Fatalf("Storage.DeleteUser() error = %v", err)
	}

	got, err := s.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Storage.GetConversation() error = %v", err)
	}
	if !reflect.DeepEqual(memberIDsOf(got.Users), []string{keeper, third}) {
		t.Errorf("members after delete = %v, want %v", memberIDsOf(got.Users), []string{keeper, third})
	}
	if !reflect.DeepEqual(memberIDsOf(got.Admins), []string{keeper}) {
		t.Errorf("admins after delete = %v, want %v", memberIDsOf(got.Admins), []string{keeper})
	}

	gotMsg, err := s.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("Storage.GetMessage() error = %v", err)
	}
	if !reflect.DeepEqual(memberIDsOf(gotMsg.ReadBy), []string{keeper}) {
		t.Errorf("readBy after delete = %v, want %v", memberIDsOf(gotMsg.ReadBy), []string{keeper})
	}
}

func memberIDsOf(users []models.UserPublic) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func initStorage() *pgxpool.Pool {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&pool_max_conns=%d&pool_min_conns=%d",
		"postgres",
		"root",
		"localhost",
		5422,
		"messenger",
		3,
		5,
	)

	pool, _ := pgxpool.New(context.Background(), connString)

	return pool
}
