package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/convert"
	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/testutil"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func convertWithID(t *testing.T, id, src string, target codegen.Target) convert.Result {
	t.Helper()
	p := convert.NewPipeline(convert.WithIDGenerator(convert.NewFixedGenerator(id)))
	return p.Convert(context.Background(), src, target)
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}

	var journal string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journal); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if journal != "wal" {
		t.Errorf("journal_mode = %q, want wal", journal)
	}
}

func TestAddAndGet_Success(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	src := "x = 5\nprint(x)\n"

	res := convertWithID(t, "conv-1", src, codegen.TargetC)
	if !res.OK {
		t.Fatalf("conversion failed: %v", res.Err())
	}
	rec := FromResult(src, res, testTime)

	seq, err := s.Add(ctx, rec)
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}

	got, err := s.Get(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Code != res.Code {
		t.Errorf("Code = %q, want %q", got.Code, res.Code)
	}
	if got.SourceHash != ir.SourceHash(src) {
		t.Errorf("SourceHash = %q, want %q", got.SourceHash, ir.SourceHash(src))
	}
	if got.OutputHash != ir.OutputHash("c", res.Code) {
		t.Errorf("OutputHash = %q", got.OutputHash)
	}
	if got.IRHash != res.IRHash || got.IRHash == "" {
		t.Errorf("IRHash = %q, want %q", got.IRHash, res.IRHash)
	}
	if !got.CreatedAt.Equal(testTime) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testTime)
	}
	if got.TranslatorVersion != ir.TranslatorVersion || got.IRVersion != ir.IRVersion {
		t.Errorf("versions = %q/%q", got.TranslatorVersion, got.IRVersion)
	}
	if !got.OK || got.Seq != 1 {
		t.Errorf("OK = %v, Seq = %d", got.OK, got.Seq)
	}
}

func TestAdd_FailedConversion(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	src := "count = 0\ncount = \"many\"\n"

	res := convertWithID(t, "conv-err", src, codegen.TargetJava)
	if res.OK {
		t.Fatal("expected conversion to fail")
	}
	if _, err := s.Add(ctx, FromResult(src, res, testTime)); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	got, err := s.Get(ctx, "conv-err")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.OK || got.Code != "" || got.OutputHash != "" {
		t.Errorf("failed record carries output: %+v", got)
	}
	if got.ErrorKind != "TypeError" || got.ErrorCode != "E401" {
		t.Errorf("error = %s %s, want TypeError E401", got.ErrorKind, got.ErrorCode)
	}

	replayed := got.Result()
	if replayed.Error == nil {
		t.Fatal("replayed result has no error")
	}
	if replayed.Error.Error() != res.Error.Error() {
		t.Errorf("replayed error = %q, want %q", replayed.Error.Error(), res.Error.Error())
	}
}

func TestAdd_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	src := "print(1)\n"
	rec := FromResult(src, convertWithID(t, "dup", src, codegen.TargetCPP), testTime)

	first, err := s.Add(ctx, rec)
	if err != nil {
		t.Fatalf("first Add() failed: %v", err)
	}
	second, err := s.Add(ctx, rec)
	if err != nil {
		t.Fatalf("second Add() failed: %v", err)
	}
	if first != second {
		t.Errorf("duplicate add changed seq: %d then %d", first, second)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestAdd_RejectsEmptyID(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.Add(context.Background(), Record{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestGet_NotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	empty, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("List() on empty store = %#v, want empty slice", empty)
	}

	clock := testutil.NewStepClock(testTime, time.Second)
	for _, id := range []string{"a", "b", "c"} {
		src := "print(1)\n"
		rec := FromResult(src, convertWithID(t, id, src, codegen.TargetC), clock.Now())
		if _, err := s.Add(ctx, rec); err != nil {
			t.Fatalf("Add(%s) failed: %v", id, err)
		}
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	var ids []string
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "c" || ids[1] != "b" || ids[2] != "a" {
		t.Errorf("List() ids = %v, want [c b a]", ids)
	}

	two, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) failed: %v", err)
	}
	if len(two) != 2 || two[0].ID != "c" {
		t.Errorf("List(2) = %d records starting %q", len(two), two[0].ID)
	}
}

func TestLookup(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	src := "x = 1.5\nprint(x)\n"

	res := convertWithID(t, "cached", src, codegen.TargetJava)
	if _, err := s.Add(ctx, FromResult(src, res, testTime)); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	got, err := s.Lookup(ctx, ir.SourceHash(src), codegen.TargetJava, ir.TranslatorVersion)
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if got.ID != "cached" {
		t.Errorf("Lookup() id = %q, want cached", got.ID)
	}
	if len(got.Warnings) != len(res.Warnings) || len(got.Warnings) == 0 {
		t.Errorf("warnings = %v, want %v", got.Warnings, res.Warnings)
	}

	misses := []struct {
		name    string
		hash    string
		target  codegen.Target
		version string
	}{
		{"other target", ir.SourceHash(src), codegen.TargetC, ir.TranslatorVersion},
		{"other source", ir.SourceHash(src + " "), codegen.TargetJava, ir.TranslatorVersion},
		{"other version", ir.SourceHash(src), codegen.TargetJava, "0.0.0"},
	}
	for _, m := range misses {
		t.Run(m.name, func(t *testing.T) {
			if _, err := s.Lookup(ctx, m.hash, m.target, m.version); !errors.Is(err, ErrNotFound) {
				t.Errorf("Lookup() error = %v, want ErrNotFound", err)
			}
		})
	}
}
