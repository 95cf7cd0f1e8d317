package xtr

import (
	"bytes"
	"testing"
)

func TestAgreementRoundTripProducesSharedBytes(t *testing.T) {
	params, secret, err := GenerateServerParams()
	if err != nil {
		t.Fatalf("GenerateServerParams returned error: %v", err)
	}

	clientStream, traceB, err := ClientDerive(params)
	if err != nil {
		t.Fatalf("ClientDerive returned error: %v", err)
	}

	serverStream, err := ServerRecall(params, secret, traceB)
	if err != nil {
		t.Fatalf("ServerRecall returned error: %v", err)
	}

	if !bytes.Equal(clientStream, serverStream) {
		t.Fatalf("client and server derived different key streams")
	}
}

func TestWrapUnwrapUsesAgreedStream(t *testing.T) {
	params, secret, err := GenerateServerParams()
	if err != nil {
		t.Fatalf("GenerateServerParams returned error: %v", err)
	}
	clientStream, traceB, err := ClientDerive(params)
	if err != nil {
		t.Fatalf("ClientDerive returned error: %v", err)
	}
	serverStream, err := ServerRecall(params, secret, traceB)
	if err != nil {
		t.Fatalf("ServerRecall returned error: %v", err)
	}

	var fileKey [16]byte
	for i := range fileKey {
		fileKey[i] = byte(i * 7)
	}

	wrapped := WrapKey(fileKey, clientStream)
	recovered := UnwrapKey(wrapped, serverStream)
	if recovered != fileKey {
		t.Fatalf("UnwrapKey(WrapKey(key)) = %x, want %x", recovered, fileKey)
	}
}
