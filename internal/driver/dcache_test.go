package driver

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"

	"uitest/internal/diag"
)

func TestDiskCachePutGet(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "uitest"))
	if err != nil {
		t.Fatal(err)
	}
	content := Digest(sha256.Sum256([]byte("//@ run\n")))
	key := cacheKey(content)

	var out DiskPayload
	if hit, err := cache.Get(key, &out); hit || err != nil {
		t.Fatalf("empty cache returned hit=%v err=%v", hit, err)
	}

	in := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        "tests/ui/a.rs",
		ContentHash: content,
		Revisions:   []string{"a"},
		Buckets:     2,
		Diagnostics: toCached([]diag.Diagnostic{diag.NewError(diag.CommentDuplicate, 2, "cannot specify `edition` twice")}),
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	hit, err := cache.Get(key, &out)
	if !hit || err != nil {
		t.Fatalf("expected a hit, got hit=%v err=%v", hit, err)
	}
	if diff := cmp.Diff(in, &out); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	if got := fromCached(out.Diagnostics); got[0].Code != diag.CommentDuplicate || got[0].Severity != diag.SevError {
		t.Errorf("diagnostic did not survive the round trip: %v", got)
	}

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(cache.pathFor(key)))
	if err != nil || len(entries) != 1 {
		t.Errorf("expected exactly one entry file, got %v (%v)", entries, err)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if hit, _ := cache.Get(key, &out); hit {
		t.Errorf("entry survived DropAll")
	}
}

func TestDiskCacheSchemaMismatchIsMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := cacheKey(Digest{1})
	p := cache.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatal(err)
	}
	data, err := msgpack.Marshal(&DiskPayload{Schema: diskCacheSchemaVersion + 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	var out DiskPayload
	if hit, err := cache.Get(key, &out); hit || err != nil {
		t.Errorf("foreign schema must be a miss, got hit=%v err=%v", hit, err)
	}

	if err := os.WriteFile(p, []byte{0xc1}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(key, &out); err == nil {
		t.Errorf("expected an error for a corrupt entry")
	}
}

func TestNilDiskCache(t *testing.T) {
	var cache *DiskCache
	var out DiskPayload
	if hit, err := cache.Get(Digest{}, &out); hit || err != nil {
		t.Errorf("nil cache must miss")
	}
	if err := cache.Put(Digest{}, &out); err != nil {
		t.Errorf("nil cache must accept writes: %v", err)
	}
	if cache.Dir() != "" || cache.DropAll() != nil {
		t.Errorf("nil cache must be inert")
	}
}

func TestCacheKeyDependsOnContent(t *testing.T) {
	if cacheKey(Digest{1}) == cacheKey(Digest{2}) {
		t.Errorf("different content must give different keys")
	}
	if cacheKey(Digest{1}) != cacheKey(Digest{1}) {
		t.Errorf("keys must be stable")
	}
}
