package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedisCache_Get_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectGet("test:mykey").SetVal("rom")

	val, ok := cache.Get("mykey")
	if !ok {
		t.Error("Expected cache hit")
	}
	if val != "rom" {
		t.Errorf("Expected 'rom', got %q", val)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Get_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectGet("test:mykey").RedisNil()

	val, ok := cache.Get("mykey")
	if ok {
		t.Error("Expected cache miss")
	}
	if val != "" {
		t.Errorf("Expected empty string, got %q", val)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Get_ErrorIsMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectGet("test:mykey").SetErr(errors.New("connection reset"))

	if _, ok := cache.Get("mykey"); ok {
		t.Error("Expected cache miss on error")
	}
	if stats := cache.Stats(); stats.Misses != 1 || stats.Hits != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestRedisCache_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectSet("test:mykey", "rom", 3600*time.Second).SetVal("OK")

	if err := cache.Set("mykey", "rom"); err != nil {
		t.Errorf("Set failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Set_NoTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "test:")

	mock.ExpectSet("test:mykey", "rom", 0).SetVal("OK")

	if err := cache.Set("mykey", "rom"); err != nil {
		t.Errorf("Set failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_DefaultPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "")

	mock.ExpectGet("xlitfix:hash123").SetVal("rom")

	val, ok := cache.Get("hash123")
	if !ok || val != "rom" {
		t.Errorf("Expected 'rom', got %q (ok=%v)", val, ok)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Entries(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectScan(0, "test:*", scanCount).SetVal([]string{"test:a", "test:b"}, 7)
	mock.ExpectMGet("test:a", "test:b").SetVal([]interface{}{"rom", nil})
	mock.ExpectScan(7, "test:*", scanCount).SetVal([]string{"test:c"}, 0)
	mock.ExpectMGet("test:c").SetVal([]interface{}{"sella"})

	entries, err := cache.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}

	if len(entries) != 2 || entries["a"] != "rom" || entries["c"] != "sella" {
		t.Errorf("Unexpected entries: %v", entries)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Entries_ScanError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectScan(0, "test:*", scanCount).SetErr(errors.New("boom"))

	if _, err := cache.Entries(); err == nil {
		t.Error("Expected scan error")
	}
}

func TestRedisCache_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectPing().SetVal("PONG")

	if err := cache.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Close(t *testing.T) {
	db, _ := redismock.NewClientMock()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	if err := cache.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestNewRedisCache_BadURL(t *testing.T) {
	if _, err := NewRedisCache(RedisConfig{URL: "not-a-url"}); err == nil {
		t.Error("Expected error for invalid URL")
	}
}
