// Package blob stores camper profile photographs. The allocation engine only
// ever sees photo URLs; bytes live behind this facade so deployments can pick
// a local directory, process memory, or an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Driver identifies a photo storage backend.
type Driver string

const (
	// DriverFilesystem stores photos under a local directory. Default.
	DriverFilesystem Driver = "fs"
	// DriverS3 stores photos in an S3 or MinIO bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps photos in process memory. Tests only.
	DriverMemory Driver = "memory"
)

// PutOptions configures a photo write.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// SignedURLOptions configures URL pre-signing. Only GET is supported.
type SignedURLOptions struct {
	Expiry time.Duration // default 15m
}

// Info describes a stored photo.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	URL          string            `json:"url,omitempty"`
}

// Store is the photo storage backend. Put replaces any existing photo under
// the same key; re-uploading a camper's photo is an ordinary overwrite.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	Driver() Driver
}

// ErrNotFound indicates the key holds no photo.
var ErrNotFound = errors.New("blob: not found")

// ErrUnsupported indicates the driver does not provide the operation.
var ErrUnsupported = errors.New("blob: unsupported operation")

// PhotoKey returns the canonical object key for a camper's profile photo.
func PhotoKey(phone string) string {
	return "photos/" + strings.TrimSpace(phone)
}

// Open selects a Store implementation from the environment.
//
//	CAMPCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	CAMPCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./photodata)
//	(S3 specific variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("CAMPCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("CAMPCORE_BLOB_FS_ROOT"))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

func cloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
