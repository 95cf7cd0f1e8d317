package wire

import (
	"encoding/json"
	"fmt"
)

// RequestType discriminates the four request variants (§4.8).
type RequestType string

const (
	RequestUpload   RequestType = "Upload"
	RequestGetFiles RequestType = "GetFiles"
	RequestDownload RequestType = "Download"
	RequestDelete   RequestType = "Delete"
)

// Request is the tagged record sent client -> server. ID is populated for
// Download and Delete, formatted the same way the server's own record ids
// are: decimal text, since JSON numbers cannot losslessly hold a u128.
type Request struct {
	Type RequestType `json:"type"`
	ID   string      `json:"id,omitempty"`
}

// ResponseType discriminates the three response variants (§4.8).
type ResponseType string

const (
	ResponseSuccess ResponseType = "Success"
	ResponseFSFail  ResponseType = "FSFail"
	ResponseComm    ResponseType = "CommFail"
)

// Response is the bare-tag record sent server -> client.
type Response struct {
	Type ResponseType `json:"type"`
}

// XTRParamsMsg carries the public XTR parameters (p, q, Tr(g), Tr(g^k)),
// hex-encoded since JSON numbers cannot hold integers of up to about 512
// bits (§4.4, §6).
type XTRParamsMsg struct {
	P      string `json:"p"`
	Q      string `json:"q"`
	TraceG string `json:"trace_g"`
	TraceK string `json:"trace_k"`
}

// TraceBMsg carries the client's Tr(g^b) reply in the key-wrap subprotocol.
type TraceBMsg struct {
	TraceB string `json:"trace_b"`
}

// WrappedKeyMsg carries the 128-bit DEAL key XORed with the derived
// keystream, hex-encoded.
type WrappedKeyMsg struct {
	Key string `json:"key"`
}

// FileListEntry is one row of the GetFiles response payload.
type FileListEntry struct {
	ID          string `json:"id"`
	SizeInBytes uint64 `json:"size_in_bytes"`
	DisplayName string `json:"display_name"`
}

// WriteJSON marshals v with the standard library's default tagged-struct
// representation and writes it as one binary frame. The serializer choice
// is part of the protocol (§9): a receiver using a different convention
// silently fails to deserialize.
func WriteJSON(c Conn, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wire: marshal: %w", err)
	}
	return c.WriteFrame(b)
}

// ReadJSON reads one frame and unmarshals it into v.
func ReadJSON(c Conn, v interface{}) error {
	b, err := c.ReadFrame()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("wire: unmarshal: %w", err)
	}
	return nil
}
