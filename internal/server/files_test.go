package server

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestListFiles_Empty(t *testing.T) {
	ts := newTestServer(t, "", 0)

	rr := ts.get("/files", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got := rr.Body.String(); got != "{\"files\":[]}\n" {
		t.Errorf("body = %q, want {\"files\":[]}", got)
	}
}

func TestListFiles_SortedWithMetadata(t *testing.T) {
	ts := newTestServer(t, "", 0)

	for _, name := range []string{"zeta.txt", "alpha.txt", "mid.txt"} {
		if rr := ts.upload(t, name, []byte(name), ""); rr.Code != http.StatusCreated {
			t.Fatalf("upload %s: got %d", name, rr.Code)
		}
	}

	rr := ts.get("/files", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	resp := decodeJSON[listFilesResp](t, rr)

	want := []string{"alpha.txt", "mid.txt", "zeta.txt"}
	if len(resp.Files) != len(want) {
		t.Fatalf("got %d files, want %d", len(resp.Files), len(want))
	}
	for i, f := range resp.Files {
		if f.Name != want[i] {
			t.Errorf("files[%d].name = %q, want %q", i, f.Name, want[i])
		}
		if f.Size != int64(len(f.Name)) {
			t.Errorf("files[%d].size = %d, want %d", i, f.Size, len(f.Name))
		}
		if _, err := time.Parse(time.RFC3339, f.Modified); err != nil {
			t.Errorf("files[%d].modified = %q is not RFC3339: %v", i, f.Modified, err)
		}
	}
}

func TestListFiles_ModifiedIsUTC(t *testing.T) {
	ts := newTestServer(t, "", 0)
	writeFile(t, ts.dir, "stamp.txt", []byte("x"))

	mtime := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	if err := os.Chtimes(filepath.Join(ts.dir, "stamp.txt"), mtime, mtime); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	resp := decodeJSON[listFilesResp](t, ts.get("/files", ""))
	if len(resp.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(resp.Files))
	}
	if got := resp.Files[0].Modified; got != "2024-03-01T10:30:00Z" {
		t.Errorf("modified = %q, want 2024-03-01T10:30:00Z", got)
	}
}

func TestListFiles_Idempotent(t *testing.T) {
	ts := newTestServer(t, "", 0)
	writeFile(t, ts.dir, "a.txt", []byte("a"))
	writeFile(t, ts.dir, "b.txt", []byte("bb"))

	first := ts.get("/files", "").Body.String()
	second := ts.get("/files", "").Body.String()
	if first != second {
		t.Errorf("listing changed between calls:\n%s\n%s", first, second)
	}
}

func TestListFiles_HidesNonFiles(t *testing.T) {
	ts := newTestServer(t, "", 0)
	writeFile(t, ts.dir, "visible.txt", []byte("v"))
	writeFile(t, ts.dir, ".env", []byte("SECRET=1"))
	writeFile(t, ts.dir, stagingPrefix+"1234"+stagingSuffix, []byte("partial"))
	if err := os.Mkdir(filepath.Join(ts.dir, "nested"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	writeFile(t, filepath.Join(ts.dir, "nested"), "inner.txt", []byte("i"))

	resp := decodeJSON[listFilesResp](t, ts.get("/files", ""))
	if len(resp.Files) != 1 || resp.Files[0].Name != "visible.txt" {
		t.Errorf("files = %+v, want only visible.txt", resp.Files)
	}
}

func TestListFiles_ReflectsExternalChanges(t *testing.T) {
	ts := newTestServer(t, "", 0)
	writeFile(t, ts.dir, "a.txt", []byte("a"))

	if n := len(decodeJSON[listFilesResp](t, ts.get("/files", "")).Files); n != 1 {
		t.Fatalf("got %d files, want 1", n)
	}

	if err := os.Remove(filepath.Join(ts.dir, "a.txt")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n := len(decodeJSON[listFilesResp](t, ts.get("/files", "")).Files); n != 0 {
		t.Errorf("deleted file still listed, got %d files", n)
	}
}

func TestListFiles_StorageFailure(t *testing.T) {
	ts := newTestServer(t, "", 0)
	if err := os.RemoveAll(ts.dir); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	rr := ts.get("/files", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
	if got := decodeJSON[errorResp](t, rr).Error; got != "failed to list files" {
		t.Errorf("error = %q, want a generic message", got)
	}
}
