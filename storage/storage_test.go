package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panchayattax/config"
)

func TestNew_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	m, err := New(ctx, config.StorageConfig{
		Driver: config.StorageDriverMinio,
		Bucket: "bills",
		Minio:  config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"},
	})
	require.NoError(t, err)
	assert.IsType(t, &MinioStore{}, m)

	s, err := New(ctx, config.StorageConfig{
		Driver: config.StorageDriverS3,
		Bucket: "bills",
		S3:     config.S3Config{Region: "ap-south-1", AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret"},
	})
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, s)

	_, err = New(ctx, config.StorageConfig{Driver: "gcs"})
	assert.Error(t, err)
}

func TestURL(t *testing.T) {
	m, err := NewMinioStore("panchayat-bills", config.MinioConfig{Endpoint: "localhost:9000"})
	require.NoError(t, err)
	assert.Equal(t, "s3://panchayat-bills/bills/2025/LONI-2025-AB12CD34.pdf", m.URL("bills/2025/LONI-2025-AB12CD34.pdf"))
}

func TestMinioPresignGet_Offline(t *testing.T) {
	m, err := NewMinioStore("panchayat-bills", config.MinioConfig{
		Endpoint: "localhost:9000", AccessKey: "minioadmin", SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	raw, err := m.PresignGet(context.Background(), "bills/2025/LONI-2025-AB12CD34.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/panchayat-bills/bills/2025/LONI-2025-AB12CD34.pdf", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestS3PresignGet_Offline(t *testing.T) {
	s, err := NewS3Store(context.Background(), "panchayat-bills", config.S3Config{
		Region: "ap-south-1", AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	raw, err := s.PresignGet(context.Background(), "bills/2025/LONI-2025-AB12CD34.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Contains(t, u.Host, "panchayat-bills")
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-Credential"), "ap-south-1/s3")
}
