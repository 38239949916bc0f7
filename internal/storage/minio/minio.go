package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/AlexMickh/speak-messenger/internal/models"
	"github.com/minio/minio-go/v7"
)

type Client interface {
	PutObject(
		ctx context.Context,
		bucketName string,
		objectName string,
		reader io.Reader,
		objectSize int64,
		opts minio.PutObjectOptions,
	) (info minio.UploadInfo, err error)
	PresignedGetObject(
		ctx context.Context,
		bucketName string,
		objectName string,
		expires time.Duration,
		reqParams url.Values,
	) (u *url.URL, err error)
	RemoveObject(
		ctx context.Context,
		bucketName string,
		objectName string,
		opts minio.RemoveObjectOptions,
	) error
}

// Minio keeps user and conversation avatars. Object name is the owning
// entity id, so a re-upload overwrites the previous avatar.
type Minio struct {
	mc         Client
	bucketName string
	expires    time.Duration
}

func New(mc Client, bucketName string, expires time.Duration) *Minio {
	return &Minio{
		mc:         mc,
		bucketName: bucketName,
		expires:    expires,
	}
}

func (m *Minio) SaveAvatar(ctx context.Context, avatar models.Avatar) (string, error) {
	const op = "storage.minio.SaveAvatar"

	reader := bytes.NewReader(avatar.Data)

	_, err := m.mc.PutObject(
		ctx,
		m.bucketName,
		avatar.ID,
		reader,
		int64(len(avatar.Data)),
		minio.PutObjectOptions{ContentType: "image/png"},
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url, err := m.AvatarUrl(ctx, avatar.ID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return url, nil
}

func (m *Minio) AvatarUrl(ctx context.Context, avatarId string) (string, error) {
	const op = "storage.minio.AvatarUrl"

	url, err := m.mc.PresignedGetObject(ctx, m.bucketName, avatarId, m.expires, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return url.String(), nil
}

func (m *Minio) DeleteAvatar(ctx context.Context, avatarId string) error {
	const op = "storage.minio.DeleteAvatar"

	err := m.mc.RemoveObject(ctx, m.bucketName, avatarId, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
