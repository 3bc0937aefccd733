package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func eachDriver(t *testing.T, fn func(t *testing.T, kv KV)) {
	t.Helper()

	drivers := map[string]func(t *testing.T) KV{
		"sqlite memory": func(t *testing.T) KV {
			kv, err := NewSQLite(":memory:")
			if err != nil {
				t.Fatalf("failed to create sqlite store: %v", err)
			}
			return kv
		},
		"sqlite file": func(t *testing.T) KV {
			kv, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
			if err != nil {
				t.Fatalf("failed to create sqlite store: %v", err)
			}
			return kv
		},
		"bolt": func(t *testing.T) KV {
			kv, err := NewBolt(filepath.Join(t.TempDir(), "test.bolt"))
			if err != nil {
				t.Fatalf("failed to create bolt store: %v", err)
			}
			return kv
		},
		"file": func(t *testing.T) KV {
			kv, err := NewFile(filepath.Join(t.TempDir(), "kv"))
			if err != nil {
				t.Fatalf("failed to create file store: %v", err)
			}
			return kv
		},
	}

	if addr := os.Getenv("CHARTFM_TEST_REDIS_ADDR"); addr != "" {
		drivers["redis"] = func(t *testing.T) KV {
			kv, err := NewRedis(context.Background(), addr, "", 15)
			if err != nil {
				t.Fatalf("failed to create redis store: %v", err)
			}
			// start from a clean slate; the database is shared between subtests
			for _, key := range []string{"snapshot/nobody_albums_7day", "snapshot/alice_albums_7day",
				"snapshot/alice_albums_1month", "request/last"} {
				_ = kv.Delete(context.Background(), key)
			}
			return kv
		}
	}

	for name, open := range drivers {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			t.Cleanup(func() { _ = kv.Close() })
			fn(t, kv)
		})
	}
}

func TestKV_GetMissing(t *testing.T) {
	eachDriver(t, func(t *testing.T, kv KV) {
		_, err := kv.Get(context.Background(), "snapshot/nobody_albums_7day")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestKV_PutGetReplace(t *testing.T) {
	eachDriver(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		key := "snapshot/alice_albums_7day"

		if err := kv.Put(ctx, key, []byte(`{"a":1}`)); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		got, err := kv.Get(ctx, key)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !bytes.Equal(got, []byte(`{"a":1}`)) {
			t.Errorf("expected first value, got %s", got)
		}

		if err := kv.Put(ctx, key, []byte(`{"b":2}`)); err != nil {
			t.Fatalf("second put failed: %v", err)
		}
		got, err = kv.Get(ctx, key)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !bytes.Equal(got, []byte(`{"b":2}`)) {
			t.Errorf("expected replaced value, got %s", got)
		}
	})
}

func TestKV_KeysAreIndependent(t *testing.T) {
	eachDriver(t, func(t *testing.T, kv KV) {
		ctx := context.Background()

		if err := kv.Put(ctx, "snapshot/alice_albums_7day", []byte("week")); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if err := kv.Put(ctx, "snapshot/alice_albums_1month", []byte("month")); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		got, err := kv.Get(ctx, "snapshot/alice_albums_7day")
		if err != nil || string(got) != "week" {
			t.Errorf("expected week, got %q (%v)", got, err)
		}
		got, err = kv.Get(ctx, "snapshot/alice_albums_1month")
		if err != nil || string(got) != "month" {
			t.Errorf("expected month, got %q (%v)", got, err)
		}
	})
}

func TestKV_Delete(t *testing.T) {
	eachDriver(t, func(t *testing.T, kv KV) {
		ctx := context.Background()

		if err := kv.Put(ctx, "request/last", []byte("x")); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if err := kv.Delete(ctx, "request/last"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := kv.Get(ctx, "request/last"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := kv.Delete(ctx, "request/last"); err != nil {
			t.Errorf("deleting a missing key should succeed, got %v", err)
		}
	})
}

func TestKV_ConcurrentPuts(t *testing.T) {
	eachDriver(t, func(t *testing.T, kv KV) {
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if err := kv.Put(ctx, "request/last", []byte{byte('0' + i)}); err != nil {
					t.Errorf("put failed: %v", err)
				}
			}(i)
		}
		wg.Wait()

		got, err := kv.Get(ctx, "request/last")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected one of the written values, got %q", got)
		}
	})
}

func TestOpen(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverBolt, DriverFile, ""} {
		t.Run("driver "+driver, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "data")
			kv, err := Open(context.Background(), Options{Driver: driver, Dir: dir})
			if err != nil {
				t.Fatalf("open failed: %v", err)
			}
			defer func() { _ = kv.Close() }()

			if _, err := os.Stat(dir); err != nil {
				t.Errorf("expected data dir to exist: %v", err)
			}
			if err := kv.Put(context.Background(), "k", []byte("v")); err != nil {
				t.Errorf("put failed: %v", err)
			}
		})
	}

	if _, err := Open(context.Background(), Options{Driver: "memcached", Dir: t.TempDir()}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestSQLite_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	kv, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := kv.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	_ = kv.Close()

	kv, err = NewSQLite(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer func() { _ = kv.Close() }()

	got, err := kv.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("expected persisted value, got %q (%v)", got, err)
	}
}
