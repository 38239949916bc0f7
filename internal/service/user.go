package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexMickh/speak-messenger/internal/errs"
	"github.com/AlexMickh/speak-messenger/internal/models"
	"github.com/AlexMickh/speak-messenger/internal/storage"
	"github.com/AlexMickh/speak-messenger/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *Service) Register(ctx context.Context, user models.User) (models.User, string, error) {
	const op = "service.Register"

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	user.ID = uuid.NewString()
	user.Password = string(hash)

	if err = s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return models.User{}, "", errs.Conflict("user with this email already exists")
		}
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	saved, err := s.storage.GetUserByID(ctx, user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.Issue(saved.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	if err = s.cache.SaveUser(ctx, saved); err != nil {
		logger.GetFromCtx(ctx).Error(ctx, "failed to cache user", zap.Error(err))
	}

	return saved, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (models.User, string, error) {
	const op = "service.Login"

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, "", errs.NotFound("user with this email wasn't found")
		}
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, "", errs.Unauthorized("wrong password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	return user, token, nil
}

// GetUserByID reads through the cache; misses fall back to the database
// and repopulate it.
func (s *Service) GetUserByID(ctx context.Context, id string) (models.User, error) {
	const op = "service.GetUserByID"

	user, err := s.cache.GetUser(ctx, id)
	if err == nil {
		return user, nil
	}

	user, err = s.storage.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, errs.NotFoundf("user with id %s wasn't found", id)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.cache.SaveUser(ctx, user); err != nil {
		logger.GetFromCtx(ctx).Error(ctx, "failed to cache user", zap.Error(err))
	}

	return user, nil
}

func (s *Service) GetUsers(ctx context.Context) ([]models.UserPublic, error) {
	const op = "service.GetUsers"

	users, err := s.storage.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

func (s *Service) GetUsersByName(ctx context.Context, name string) ([]models.UserPublic, error) {
	const op = "service.GetUsersByName"

	users, err := s.storage.GetUsersByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// UpdateUser applies a partial profile update and returns the updated
// user with a fresh token.
func (s *Service) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, string, error) {
	const op = "service.UpdateUser"

	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, "", fmt.Errorf("%s: %w", op, err)
		}
		hashed := string(hash)
		upd.Password = &hashed
	}

	user, err := s.storage.UpdateUser(ctx, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, "", errs.NotFoundf("user with id %s wasn't found", id)
		}
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return models.User{}, "", errs.Conflict("user with this email already exists")
		}
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	if err = s.cache.DeleteUser(ctx, id); err != nil {
		logger.GetFromCtx(ctx).Error(ctx, "failed to invalidate cached user", zap.Error(err))
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	return user, token, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	const op = "service.DeleteUser"

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return errs.NotFoundf("user with id %s wasn't found", id)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.DeleteUser(ctx, id); err != nil {
		logger.GetFromCtx(ctx).Error(ctx, "failed to invalidate cached user", zap.Error(err))
	}
	if err := s.s3.DeleteAvatar(ctx, id); err != nil {
		logger.GetFromCtx(ctx).Error(ctx, "failed to delete avatar", zap.Error(err))
	}

	return nil
}

// UploadUserAvatar stores the image and points the profile at its
// presigned URL.
func (s *Service) UploadUserAvatar(ctx context.Context, id string, data []byte) (models.User, error) {
	const op = "service.UploadUserAvatar"

	url, err := s.s3.SaveAvatar(ctx, models.Avatar{ID: id, Data: data})
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UpdateUser(ctx, id, models.UserUpdate{ImgUrl: &url})
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, errs.NotFoundf("user with id %s wasn't found", id)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.cache.DeleteUser(ctx, id); err != nil {
		logger.GetFromCtx(ctx).Error(ctx, "failed to invalidate cached user", zap.Error(err))
	}

	return user, nil
}
