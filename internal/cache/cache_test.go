package cache

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestKeyIsNamespacedAndStable(t *testing.T) {
	k1 := Key("extract", "summons", "hash")
	k2 := Key("extract", "summons", "hash")
	if k1 != k2 {
		t.Fatalf("keys differ: %s vs %s", k1, k2)
	}
	if !strings.HasPrefix(k1, "docket:v1:extract:") {
		t.Errorf("unexpected key prefix: %s", k1)
	}
	if Key("extract", "ab", "c") == Key("extract", "a", "bc") {
		t.Error("part boundaries must affect the key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Minute)
	value := []byte("hello")
	if err := c.Set("k", value, 0); err != nil {
		t.Fatal(err)
	}
	value[0] = 'j'

	got, ok := c.Get("k")
	if !ok || string(got) != "hello" {
		t.Fatalf("Get() = %q, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCacheRoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewDiskCache(dir, time.Hour)
	c.now = func() time.Time { return now }

	key := Key("extract", "doc")
	if err := c.Set(key, []byte(`{"a":1}`), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok := c.Get(key)
	if !ok || string(got) != `{"a":1}` {
		t.Fatalf("Get() = %q, %v", got, ok)
	}

	files, _ := os.ReadDir(dir)
	for _, f := range files {
		if strings.Contains(f.Name(), ":") {
			t.Errorf("file name contains colon: %s", f.Name())
		}
		if strings.HasPrefix(f.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", f.Name())
		}
	}

	now = now.Add(2 * time.Hour)
	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCachePrune(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewDiskCache(dir, time.Hour)
	c.now = func() time.Time { return now }

	_ = c.Set("short", []byte("x"), time.Minute)
	_ = c.Set("long", []byte("y"), 24*time.Hour)

	now = now.Add(time.Hour)
	removed, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("live entry was pruned")
	}
}

func TestDiskCacheDeleteMissingKey(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	if err := c.Delete("nope"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestLayeredCachePromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Hour, dir, time.Hour)
	if err := c.disk.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("Get() = %q, %v", got, ok)
	}
	if _, ok := c.memory.Get("k"); !ok {
		t.Error("disk hit was not promoted to memory")
	}
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Minute)
	type payload struct {
		Name string `json:"name"`
	}

	if err := SetJSON(c, "k", payload{Name: "Jane"}, 0); err != nil {
		t.Fatal(err)
	}
	var got payload
	if !GetJSON(c, "k", &got) || got.Name != "Jane" {
		t.Errorf("GetJSON() = %+v", got)
	}

	_ = c.Set("bad", []byte("not json"), 0)
	if GetJSON(c, "bad", &got) {
		t.Error("expected miss for undecodable value")
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("undecodable value should be removed")
	}
}
