package infra

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lumenhealth/media-asset-service/config"
)

// MinioClient wraps the storage backend connection. It implements
// storage.ObjectBackend for the single managed bucket.
type MinioClient struct {
	Client   *minio.Client
	Admin    *madmin.AdminClient
	Bucket   string
	Endpoint string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	madminClient, err := madmin.New(endpoint, rootUser, rootPassword, cfg.Minio.UseSSL)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	return &MinioClient{
		Client:   minioClient,
		Admin:    madminClient,
		Bucket:   cfg.Minio.Bucket,
		Endpoint: endpoint,
	}
}

// EnsureBucket creates the managed bucket if it doesn't exist.
func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Health pings the storage cluster through the admin API. Used at startup
// so a misconfigured backend is visible before the first upload fails.
func (m *MinioClient) Health(ctx context.Context) error {
	_, err := m.Admin.ServerInfo(ctx)
	if err != nil {
		return fmt.Errorf("storage backend unreachable: %w", err)
	}
	return nil
}

// Put writes one object. A non-zero partSize makes the client stream the
// payload in fixed-size parts instead of buffering it whole.
func (m *MinioClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, partSize uint64) (int64, error) {
	opts := minio.PutObjectOptions{
		ContentType: contentType,
		PartSize:    partSize,
	}

	info, err := m.Client.PutObject(ctx, m.Bucket, key, r, size, opts)
	if err != nil {
		return info.Size, err
	}
	return info.Size, nil
}

func (m *MinioClient) Remove(ctx context.Context, key string) error {
	return m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{})
}

func (m *MinioClient) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Client.StatObject(ctx, m.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Presign mints a time-limited read-only URL for the object.
func (m *MinioClient) Presign(ctx context.Context, key string, expiry time.Duration) (*url.URL, error) {
	return m.Client.PresignedGetObject(ctx, m.Bucket, key, expiry, url.Values{})
}
