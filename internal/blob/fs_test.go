package blob

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFilesystemStore(t *testing.T) *FilesystemStore {
	t.Helper()
	store, err := NewFilesystem(filepath.Join(t.TempDir(), "photodata"))
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	return store
}

func TestFilesystemStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFilesystemStore(t)
	key := PhotoKey("08030000001")

	info, err := store.Put(ctx, key, strings.NewReader("jpeg-bytes"), PutOptions{ContentType: "image/jpeg"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("jpeg-bytes")) || info.ETag == "" {
		t.Fatalf("put info: %+v", info)
	}

	got, rc, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "jpeg-bytes" || got.ContentType != "image/jpeg" {
		t.Fatalf("get = %q, %+v", data, got)
	}

	head, err := store.Head(ctx, key)
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ETag != info.ETag {
		t.Fatalf("head etag = %q, want %q", head.ETag, info.ETag)
	}
}

func TestFilesystemStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newFilesystemStore(t)
	key := PhotoKey("08030000002")

	if _, err := store.Put(ctx, key, strings.NewReader("first"), PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	second, err := store.Put(ctx, key, strings.NewReader("replacement"), PutOptions{})
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if second.Size != int64(len("replacement")) {
		t.Fatalf("overwrite size = %d", second.Size)
	}
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "replacement" {
		t.Fatalf("payload after overwrite = %q", data)
	}
}

func TestFilesystemStoreRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	store := newFilesystemStore(t)
	for _, key := range []string{"", "../escape", "photos/../../etc/passwd", "/absolute"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
}

func TestFilesystemStoreMissingKey(t *testing.T) {
	ctx := context.Background()
	store := newFilesystemStore(t)

	if _, _, err := store.Get(ctx, "photos/none"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: %v", err)
	}
	deleted, err := store.Delete(ctx, "photos/none")
	if err != nil || deleted {
		t.Fatalf("delete missing = %v, %v", deleted, err)
	}
}

func TestFilesystemStoreDeleteRemovesSidecar(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "photodata")
	store, err := NewFilesystem(root)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	key := PhotoKey("08030000003")
	if _, err := store.Put(ctx, key, strings.NewReader("bytes"), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	deleted, err := store.Delete(ctx, key)
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v", deleted, err)
	}
	if _, err := os.Stat(filepath.Join(root, key+".meta")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("meta sidecar survived delete: %v", err)
	}
}

func TestFilesystemStoreListByPrefix(t *testing.T) {
	ctx := context.Background()
	store := newFilesystemStore(t)
	for _, key := range []string{"photos/b", "photos/a", "exports/report.json"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "photos/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "photos/a" || infos[1].Key != "photos/b" {
		t.Fatalf("list result: %+v", infos)
	}
}

func TestFilesystemStorePresignReturnsLocalURL(t *testing.T) {
	store := newFilesystemStore(t)
	url, err := store.PresignURL(context.Background(), "photos/a", SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if url != "http://local.blob/photos/a" {
		t.Fatalf("url = %q", url)
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		t.Setenv("CAMPCORE_BLOB_DRIVER", "memory")
		store, err := Open(ctx)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if store.Driver() != DriverMemory {
			t.Fatalf("driver = %s", store.Driver())
		}
	})

	t.Run("fs", func(t *testing.T) {
		t.Setenv("CAMPCORE_BLOB_DRIVER", "fs")
		t.Setenv("CAMPCORE_BLOB_FS_ROOT", filepath.Join(t.TempDir(), "photos"))
		store, err := Open(ctx)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if store.Driver() != DriverFilesystem {
			t.Fatalf("driver = %s", store.Driver())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		t.Setenv("CAMPCORE_BLOB_DRIVER", "tape")
		if _, err := Open(ctx); err == nil {
			t.Fatalf("expected error for unknown driver")
		}
	})
}
