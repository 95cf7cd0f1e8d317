package session

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/barnettlynn/s6hcs/pkg/store"
	"github.com/barnettlynn/s6hcs/pkg/wire"
)

// startTestServer listens on an ephemeral loopback port and runs
// ServerHandleConnection once per accepted connection, returning the
// address to dial and a shutdown func.
func startTestServer(t *testing.T, dir string) (addr string, shutdown func()) {
	t.Helper()
	fm, err := store.New(dir)
	if err != nil {
		t.Fatalf("store.New returned error: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen returned error: %v", err)
	}
	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				conn := wire.NewTCPConn(nc)
				defer conn.Close()
				ServerHandleConnection(conn, fm)
			}()
		}
	}()
	return ln.Addr().String(), func() { ln.Close() }
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	storeDir := t.TempDir()
	addr, shutdown := startTestServer(t, storeDir)
	defer shutdown()

	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "note.txt")
	content := []byte("the quick brown fox jumps over the lazy dog")
	if err := os.WriteFile(srcPath, content, 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}

	if err := Upload(addr, srcPath, nil); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	entries, err := GetFiles(addr)
	if err != nil {
		t.Fatalf("GetFiles returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 stored file, got %d", len(entries))
	}
	if entries[0].DisplayName != "note.txt" {
		t.Fatalf("expected display name note.txt, got %q", entries[0].DisplayName)
	}

	outPath := filepath.Join(srcDir, "note-downloaded.txt")
	if err := Download(addr, entries[0].ID, outPath, nil); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("downloaded content mismatch: got %q, want %q", got, content)
	}

	if err := Delete(addr, entries[0].ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	entries, err = GetFiles(addr)
	if err != nil {
		t.Fatalf("GetFiles returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 stored files after delete, got %d", len(entries))
	}
}

func TestDownloadUnknownIDReturnsServerError(t *testing.T) {
	addr, shutdown := startTestServer(t, t.TempDir())
	defer shutdown()

	err := Download(addr, "999999999999999999999999999999", filepath.Join(t.TempDir(), "out"), nil)
	if err == nil {
		t.Fatal("expected error downloading an unknown id")
	}
	if kind, ok := ClassifyError(err); !ok || kind != ServerError {
		t.Fatalf("expected ServerError, got kind=%v ok=%v err=%v", kind, ok, err)
	}
}
