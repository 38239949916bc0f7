package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexMickh/speak-messenger/internal/models"
	"github.com/AlexMickh/speak-messenger/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = "id, first_name, last_name, email, password, img_url, about, created_at, updated_at"

func (s *Storage) SaveUser(ctx context.Context, user models.User) error {
	const op = "storage.postgres.SaveUser"

	sql := `INSERT INTO users (id, first_name, last_name, email, password, img_url, about)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.Exec(
		ctx,
		sql,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password,
		user.ImgUrl,
		user.About,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return fmt.Errorf("%s: %w", op, storage.ErrUserAlreadyExists)
			}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (models.User, error) {
	const op = "storage.postgres.GetUserByID"

	user, err := scanUser(s.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.GetUserByEmail"

	user, err := scanUser(s.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) GetUsers(ctx context.Context) ([]models.UserPublic, error) {
	const op = "storage.postgres.GetUsers"

	sql := `SELECT id, first_name, last_name, img_url, about, created_at
			FROM users
			ORDER BY first_name DESC`
	users, err := queryPublicUsers(ctx, s.db, sql)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

func (s *Storage) GetUsersByName(ctx context.Context, name string) ([]models.UserPublic, error) {
	const op = "storage.postgres.GetUsersByName"

	sql := `SELECT id, first_name, last_name, img_url, about, created_at
			FROM users
			WHERE first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%'
			ORDER BY first_name DESC`
	users, err := queryPublicUsers(ctx, s.db, sql, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, error) {
	const op = "storage.postgres.UpdateUser"

	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("first_name", upd.FirstName)
	add("last_name", upd.LastName)
	add("email", upd.Email)
	add("password", upd.Password)
	add("img_url", upd.ImgUrl)
	add("about", upd.About)
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	sql := fmt.Sprintf(
		"UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), userColumns,
	)

	user, err := scanUser(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserAlreadyExists)
			}
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteUser"

	tag, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Password,
		&user.ImgUrl,
		&user.About,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func queryPublicUsers(ctx context.Context, q querier, sql string, args ...any) ([]models.UserPublic, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserPublic
	for rows.Next() {
		var user models.UserPublic
		err = rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.ImgUrl,
			&user.About,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
