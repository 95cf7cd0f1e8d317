package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/barnettlynn/s6hcs/pkg/deal"
	"github.com/barnettlynn/s6hcs/pkg/padding"
	"github.com/barnettlynn/s6hcs/pkg/progress"
	"github.com/barnettlynn/s6hcs/pkg/wire"
)

// FileEntry mirrors wire.FileListEntry for the client-facing API (§6).
type FileEntry struct {
	ID          string
	SizeInBytes uint64
	DisplayName string
}

// ProgressFunc is the user-supplied progress sink (§6). It may be nil.
type ProgressFunc func(progress.Event)

func notify(cb ProgressFunc, ev progress.Event) {
	if cb != nil {
		cb(ev)
	}
}

func dial(addr string) (wire.Conn, error) {
	c, err := wire.Dial(addr)
	if err != nil {
		return nil, Wrap(NoConnection, err)
	}
	return c, nil
}

func readResponse(conn wire.Conn) (wire.ResponseType, error) {
	var resp wire.Response
	if err := wire.ReadJSON(conn, &resp); err != nil {
		return "", Wrap(NoConnection, err)
	}
	return resp.Type, nil
}

// replyError classifies a non-Success reply: FSFail is a ServerError, and
// CommFail (or anything else) is a BadRequest.
func replyError(respType wire.ResponseType) error {
	if respType == wire.ResponseFSFail {
		return Wrap(ServerError, fmt.Errorf("server replied %s", respType))
	}
	return Wrap(BadRequest, fmt.Errorf("server replied %s", respType))
}

// GetFiles implements the client-facing get_files(url) command (§6).
func GetFiles(addr string) ([]FileEntry, error) {
	conn, err := dial(addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := wire.WriteJSON(conn, wire.Request{Type: wire.RequestGetFiles}); err != nil {
		return nil, Wrap(NoConnection, err)
	}

	respType, err := readResponse(conn)
	if err != nil {
		return nil, err
	}
	if respType != wire.ResponseSuccess {
		return nil, replyError(respType)
	}

	frame, err := conn.ReadFrame()
	if err != nil {
		return nil, Wrap(NoConnection, err)
	}
	var raw []wire.FileListEntry
	if err := json.Unmarshal(frame, &raw); err != nil {
		return nil, Wrap(BadRequest, err)
	}
	out := make([]FileEntry, len(raw))
	for i, e := range raw {
		out[i] = FileEntry{ID: e.ID, SizeInBytes: e.SizeInBytes, DisplayName: e.DisplayName}
	}
	return out, nil
}

// Upload implements the client-facing upload(url, file_path, event)
// command: connect, run the Upload key-wrap, pad+encrypt the file under
// DEAL-RDH, send it, and report progress through cb.
func Upload(addr, filePath string, cb ProgressFunc) error {
	notify(cb, progress.Event{Phase: progress.Connecting})

	plaintext, err := os.ReadFile(filePath)
	if err != nil {
		return Wrap(BadFile, err)
	}

	conn, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := wire.WriteJSON(conn, wire.Request{Type: wire.RequestUpload}); err != nil {
		return Wrap(NoConnection, err)
	}

	key, err := clientSendKey(conn)
	if err != nil {
		return err
	}

	padded := padding.Apply(plaintext, padding.BlockSize)
	blocks := deal.BlocksFromBytes(padded)

	cipher, err := deal.New(key)
	if err != nil {
		return Wrap(BadFile, err)
	}

	bridge := progress.NewBridge(progress.Encrypting, len(blocks), func(ev progress.Event) { notify(cb, ev) })
	ciphertextBlocks, err := deal.Encrypt(cipher, deal.RDH, blocks, bridge)
	bridge.Done()
	if err != nil {
		return Wrap(BadFile, err)
	}
	ciphertext := deal.BytesFromBlocks(ciphertextBlocks)

	name := []byte(filepath.Base(filePath))
	if err := conn.WriteFrame(name); err != nil {
		return Wrap(NoConnection, err)
	}

	xferBridge := progress.NewBridge(progress.Uploading, int(wire.CountDataframes(len(ciphertext))), func(ev progress.Event) { notify(cb, ev) })
	err = wire.SendFile(conn, ciphertext, xferBridge)
	xferBridge.Done()
	if err != nil {
		return Wrap(NoConnection, err)
	}

	respType, err := readResponse(conn)
	if err != nil {
		return err
	}
	if respType != wire.ResponseSuccess {
		return replyError(respType)
	}
	return nil
}

// Download implements the client-facing download(url, id, file_path,
// event) command: request the record, run the Download key-wrap, receive
// ciphertext, decrypt under DEAL-RDH (failing with BadFile/IntegrityFailed
// on tamper), unpad, and write to filePath.
func Download(addr, id, filePath string, cb ProgressFunc) error {
	notify(cb, progress.Event{Phase: progress.Connecting})

	conn, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := wire.WriteJSON(conn, wire.Request{Type: wire.RequestDownload, ID: id}); err != nil {
		return Wrap(NoConnection, err)
	}

	respType, err := readResponse(conn)
	if err != nil {
		return err
	}
	if respType != wire.ResponseSuccess {
		if respType == wire.ResponseFSFail {
			return Wrap(ServerError, fmt.Errorf("server replied %s", respType))
		}
		return Wrap(BadRequest, fmt.Errorf("server replied %s", respType))
	}

	key, err := clientRecvKey(conn)
	if err != nil {
		return err
	}

	xferBridge := progress.NewBridge(progress.Downloading, 0, func(ev progress.Event) { notify(cb, ev) })
	ciphertext, err := wire.RecvFile(conn, xferBridge)
	xferBridge.Done()
	if err != nil {
		return Wrap(NoConnection, err)
	}

	blocks := deal.BlocksFromBytes(ciphertext)
	cipher, err := deal.New(key)
	if err != nil {
		return Wrap(BadFile, err)
	}

	bridge := progress.NewBridge(progress.Decrypting, len(blocks), func(ev progress.Event) { notify(cb, ev) })
	plaintextBlocks, err := deal.Decrypt(cipher, deal.RDH, blocks, bridge)
	bridge.Done()
	if err != nil {
		return Wrap(BadFile, err)
	}

	padded := deal.BytesFromBlocks(plaintextBlocks)
	plaintext, err := padding.Remove(padded)
	if err != nil {
		return Wrap(BadFile, err)
	}

	if err := os.WriteFile(filePath, plaintext, 0o644); err != nil {
		return Wrap(BadFile, err)
	}
	return nil
}

// Delete implements the client-facing delete(url, id) command.
func Delete(addr, id string) error {
	conn, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := wire.WriteJSON(conn, wire.Request{Type: wire.RequestDelete, ID: id}); err != nil {
		return Wrap(NoConnection, err)
	}
	respType, err := readResponse(conn)
	if err != nil {
		return err
	}
	if respType != wire.ResponseSuccess {
		return replyError(respType)
	}
	return nil
}
