package storage

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestFromFSOpen(t *testing.T) {
	store := FromFS(fstest.MapFS{
		"happy.anim": {Data: []byte("0123456789")},
	})

	f, err := store.Open("happy.anim")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if _, err := f.Seek(4, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	buf := make([]byte, 3)
	if _, err := io.ReadFull(f, buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf) != "456" {
		t.Fatalf("got %q", buf)
	}

	if _, err := store.Open("missing.anim"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMount(t *testing.T) {
	if _, err := Mount(fstest.MapFS{"manifest.txt": {Data: []byte("0\n")}}, "manifest.txt"); err != nil {
		t.Fatalf("expected mount to succeed, got %v", err)
	}
	if _, err := Mount(fstest.MapFS{}, "manifest.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testKV(t *testing.T, kv KV) {
	t.Helper()

	if _, err := kv.Get("personality"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty store, got %v", err)
	}
	if err := kv.Put("personality", []byte{0xA5, 1, 2, 3}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := kv.Get("personality")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte{0xA5, 1, 2, 3}) {
		t.Fatalf("unexpected value: %v", got)
	}
	if err := kv.Put("personality", []byte{0xA5}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = kv.Get("personality")
	if err != nil || !bytes.Equal(got, []byte{0xA5}) {
		t.Fatalf("unexpected value after overwrite: %v, %v", got, err)
	}
}

func TestMemKV(t *testing.T) {
	testKV(t, NewMemKV())
}

func TestMemKVCopiesValues(t *testing.T) {
	kv := NewMemKV()
	val := []byte{1, 2}
	_ = kv.Put("k", val)
	val[0] = 9
	got, _ := kv.Get("k")
	if got[0] != 1 {
		t.Fatal("stored value aliases caller slice")
	}
}

func TestDirKV(t *testing.T) {
	kv, err := NewDirKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirKV: %v", err)
	}
	testKV(t, kv)

	if err := kv.Put("../escape", []byte{1}); err == nil {
		t.Fatal("expected error for key with path separator")
	}
}

func TestRedisKV(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	kv := NewRedisKV(client, RedisConfig{Prefix: "pet-test"})
	testKV(t, kv)

	if !mr.Exists("pet-test:personality") {
		t.Fatal("expected namespaced key in redis")
	}
}

type fakeFlash struct {
	data       []byte
	blockSize  int64
	eraseCalls int
}

func newFakeFlash(blocks int, blockSize int64) *fakeFlash {
	data := make([]byte, int64(blocks)*blockSize)
	for i := range data {
		data[i] = 0xFF
	}
	return &fakeFlash{data: data, blockSize: blockSize}
}

func (f *fakeFlash) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	return copy(p, f.data[off:]), nil
}

func (f *fakeFlash) WriteAt(p []byte, off int64) (int, error) {
	return copy(f.data[off:], p), nil
}

func (f *fakeFlash) EraseBlockSize() int64 { return f.blockSize }

func (f *fakeFlash) EraseBlocks(start, length int64) error {
	f.eraseCalls++
	for i := start * f.blockSize; i < (start+length)*f.blockSize; i++ {
		f.data[i] = 0xFF
	}
	return nil
}

func TestBlockKV(t *testing.T) {
	dev := newFakeFlash(4, 64)
	kv := NewBlockKV(dev, 1, "personality", "other")
	testKV(t, kv)

	if dev.eraseCalls != 2 {
		t.Fatalf("expected one erase per put, got %d", dev.eraseCalls)
	}
	if dev.data[0] != 0xFF {
		t.Fatal("block below base was written")
	}
	if _, err := kv.Get("other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second slot to be empty, got %v", err)
	}
	if err := kv.Put("personality", make([]byte, 63)); err == nil {
		t.Fatal("expected oversized value to be rejected")
	}
	if _, err := kv.Get("unknown"); err == nil {
		t.Fatal("expected error for key without slot")
	}
}
