package wire

import "testing"

func TestWriteReadJSONRoundTrip(t *testing.T) {
	conn := &memConn{}
	req := Request{Type: RequestDownload, ID: "12345"}
	if err := WriteJSON(conn, req); err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}
	var got Request
	if err := ReadJSON(conn, &got); err != nil {
		t.Fatalf("ReadJSON returned error: %v", err)
	}
	if got != req {
		t.Fatalf("got %+v, want %+v", got, req)
	}
}

func TestFileListEntryRoundTrip(t *testing.T) {
	conn := &memConn{}
	entries := []FileListEntry{
		{ID: "1", SizeInBytes: 100, DisplayName: "a.txt"},
		{ID: "2", SizeInBytes: 200, DisplayName: "b.txt"},
	}
	if err := WriteJSON(conn, entries); err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}
	var got []FileListEntry
	if err := ReadJSON(conn, &got); err != nil {
		t.Fatalf("ReadJSON returned error: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, got[i], entries[i])
		}
	}
}
