package session

import (
	"encoding/json"
	"log/slog"

	"github.com/barnettlynn/s6hcs/pkg/store"
	"github.com/barnettlynn/s6hcs/pkg/wire"
)

// ServerHandleConnection runs one end-to-end session on behalf of the
// server: it reads the client's Request and dispatches to the matching
// handler. Each accepted connection is expected to call this once from its
// own goroutine (§5: parallel-thread-per-connection model) and then close.
func ServerHandleConnection(conn wire.Conn, fm *store.FileManager) error {
	var req wire.Request
	if err := wire.ReadJSON(conn, &req); err != nil {
		return Wrap(NoConnection, err)
	}

	switch req.Type {
	case wire.RequestGetFiles:
		return serverGetFiles(conn, fm)
	case wire.RequestUpload:
		return serverUpload(conn, fm)
	case wire.RequestDownload:
		return serverDownload(conn, fm, req.ID)
	case wire.RequestDelete:
		return serverDelete(conn, fm, req.ID)
	default:
		slog.Warn("session: unknown request type", "type", req.Type)
		return wire.WriteJSON(conn, wire.Response{Type: wire.ResponseComm})
	}
}

func serverGetFiles(conn wire.Conn, fm *store.FileManager) error {
	entries, err := fm.List()
	if err != nil {
		slog.Error("session: list failed", "error", err)
		return wire.WriteJSON(conn, wire.Response{Type: wire.ResponseFSFail})
	}

	if err := wire.WriteJSON(conn, wire.Response{Type: wire.ResponseSuccess}); err != nil {
		return Wrap(NoConnection, err)
	}

	out := make([]wire.FileListEntry, len(entries))
	for i, e := range entries {
		out[i] = wire.FileListEntry{ID: e.ID, SizeInBytes: e.SizeInBytes, DisplayName: e.DisplayName}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return Wrap(ServerError, err)
	}
	if err := conn.WriteFrame(b); err != nil {
		return Wrap(NoConnection, err)
	}
	return nil
}

func serverUpload(conn wire.Conn, fm *store.FileManager) error {
	key, err := serverRecvKey(conn)
	if err != nil {
		return err
	}

	nameFrame, err := conn.ReadFrame()
	if err != nil {
		return Wrap(NoConnection, err)
	}
	name := string(nameFrame)

	ciphertext, err := wire.RecvFile(conn, nil)
	if err != nil {
		return Wrap(NoConnection, err)
	}

	// The server stores ciphertext as-is; it never decrypts on upload.
	// RDH integrity is checked by the downloading client, which holds the
	// same key.
	if _, err := fm.SaveFile(name, key, ciphertext); err != nil {
		slog.Error("session: save failed", "name", name, "error", err)
		return wire.WriteJSON(conn, wire.Response{Type: wire.ResponseFSFail})
	}

	return wire.WriteJSON(conn, wire.Response{Type: wire.ResponseSuccess})
}

func serverDownload(conn wire.Conn, fm *store.FileManager, id string) error {
	blocks, _, key, err := fm.GetFile(id)
	if err != nil {
		slog.Warn("session: download record not found", "id", id, "error", err)
		return wire.WriteJSON(conn, wire.Response{Type: wire.ResponseFSFail})
	}

	if err := wire.WriteJSON(conn, wire.Response{Type: wire.ResponseSuccess}); err != nil {
		return Wrap(NoConnection, err)
	}

	if err := serverSendKey(conn, key); err != nil {
		return err
	}

	return wire.SendFile(conn, blocks, nil)
}

func serverDelete(conn wire.Conn, fm *store.FileManager, id string) error {
	if err := fm.DeleteFile(id); err != nil {
		slog.Error("session: delete failed", "id", id, "error", err)
		return wire.WriteJSON(conn, wire.Response{Type: wire.ResponseFSFail})
	}
	return wire.WriteJSON(conn, wire.Response{Type: wire.ResponseSuccess})
}
