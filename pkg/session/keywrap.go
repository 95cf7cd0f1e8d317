package session

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/barnettlynn/s6hcs/pkg/wire"
	"github.com/barnettlynn/s6hcs/pkg/xtr"
)

// serverPublishParams generates a fresh XTR parameter set, sends it, and
// returns the params alongside the server's retained secret.
func serverPublishParams(conn wire.Conn) (*xtr.Params, *xtr.Secret, error) {
	params, secret, err := xtr.GenerateServerParams()
	if err != nil {
		return nil, nil, Wrap(ServerError, fmt.Errorf("xtr param generation: %w", err))
	}
	msg := wire.XTRParamsMsg{
		P:      params.P.Text(16),
		Q:      params.Q.Text(16),
		TraceG: params.TraceG.Text(16),
		TraceK: params.TraceK.Text(16),
	}
	if err := wire.WriteJSON(conn, msg); err != nil {
		return nil, nil, Wrap(NoConnection, err)
	}
	return params, secret, nil
}

// clientReceiveParams is the client's half of serverPublishParams.
func clientReceiveParams(conn wire.Conn) (*xtr.Params, error) {
	var msg wire.XTRParamsMsg
	if err := wire.ReadJSON(conn, &msg); err != nil {
		return nil, Wrap(NoConnection, err)
	}
	p, ok := new(big.Int).SetString(msg.P, 16)
	if !ok {
		return nil, Wrap(BadRequest, fmt.Errorf("malformed p %q", msg.P))
	}
	q, ok := new(big.Int).SetString(msg.Q, 16)
	if !ok {
		return nil, Wrap(BadRequest, fmt.Errorf("malformed q %q", msg.Q))
	}
	traceG, ok := new(big.Int).SetString(msg.TraceG, 16)
	if !ok {
		return nil, Wrap(BadRequest, fmt.Errorf("malformed trace_g %q", msg.TraceG))
	}
	traceK, ok := new(big.Int).SetString(msg.TraceK, 16)
	if !ok {
		return nil, Wrap(BadRequest, fmt.Errorf("malformed trace_k %q", msg.TraceK))
	}
	return &xtr.Params{P: p, Q: q, TraceG: traceG, TraceK: traceK}, nil
}

func parseHexKey(hexKey string) (key [16]byte, err error) {
	v, ok := new(big.Int).SetString(hexKey, 16)
	if !ok {
		return key, fmt.Errorf("malformed key %q", hexKey)
	}
	b := v.Bytes()
	copy(key[16-len(b):], b)
	return key, nil
}

// serverSendKey runs the Download-direction key-wrap: the server already
// holds the stored file key, publishes XTR params, receives the client's
// Tr(g^b), recalls the shared keystream, and sends the wrapped key.
func serverSendKey(conn wire.Conn, key [16]byte) error {
	params, secret, err := serverPublishParams(conn)
	if err != nil {
		return err
	}

	var tb wire.TraceBMsg
	if err := wire.ReadJSON(conn, &tb); err != nil {
		return Wrap(NoConnection, err)
	}
	traceB, ok := new(big.Int).SetString(tb.TraceB, 16)
	if !ok {
		return Wrap(BadRequest, fmt.Errorf("malformed trace_b %q", tb.TraceB))
	}

	keyStream, err := xtr.ServerRecall(params, secret, traceB)
	if err != nil {
		return Wrap(ServerError, err)
	}
	wrapped := xtr.WrapKey(key, keyStream)
	if err := wire.WriteJSON(conn, wire.WrappedKeyMsg{Key: fmt.Sprintf("%032x", wrapped)}); err != nil {
		return Wrap(NoConnection, err)
	}
	return nil
}

// clientRecvKey is the client's half of serverSendKey: receive params,
// derive the keystream locally, send Tr(g^b), then receive and unwrap the
// key.
func clientRecvKey(conn wire.Conn) (key [16]byte, err error) {
	params, err := clientReceiveParams(conn)
	if err != nil {
		return key, err
	}
	keyStream, traceB, err := xtr.ClientDerive(params)
	if err != nil {
		return key, Wrap(BadFile, err)
	}
	if err := wire.WriteJSON(conn, wire.TraceBMsg{TraceB: traceB.Text(16)}); err != nil {
		return key, Wrap(NoConnection, err)
	}

	var wk wire.WrappedKeyMsg
	if err := wire.ReadJSON(conn, &wk); err != nil {
		return key, Wrap(NoConnection, err)
	}
	wrapped, err := parseHexKey(wk.Key)
	if err != nil {
		return key, Wrap(BadRequest, err)
	}
	return xtr.UnwrapKey(wrapped, keyStream), nil
}

// clientSendKey runs the Upload-direction key-wrap: the client generates a
// fresh ephemeral DEAL key, receives XTR params, derives the keystream and
// Tr(g^b), sends Tr(g^b), then wraps and sends the key. It returns the
// plaintext key for local encryption.
func clientSendKey(conn wire.Conn) (key [16]byte, err error) {
	if _, err := rand.Read(key[:]); err != nil {
		return key, Wrap(BadFile, fmt.Errorf("generate file key: %w", err))
	}

	params, err := clientReceiveParams(conn)
	if err != nil {
		return key, err
	}
	keyStream, traceB, err := xtr.ClientDerive(params)
	if err != nil {
		return key, Wrap(BadFile, err)
	}
	if err := wire.WriteJSON(conn, wire.TraceBMsg{TraceB: traceB.Text(16)}); err != nil {
		return key, Wrap(NoConnection, err)
	}

	wrapped := xtr.WrapKey(key, keyStream)
	if err := wire.WriteJSON(conn, wire.WrappedKeyMsg{Key: fmt.Sprintf("%032x", wrapped)}); err != nil {
		return key, Wrap(NoConnection, err)
	}
	return key, nil
}

// serverRecvKey is the server's half of clientSendKey: publish params,
// receive Tr(g^b), recall the keystream, then receive and unwrap the key.
func serverRecvKey(conn wire.Conn) (key [16]byte, err error) {
	params, secret, err := serverPublishParams(conn)
	if err != nil {
		return key, err
	}

	var tb wire.TraceBMsg
	if err := wire.ReadJSON(conn, &tb); err != nil {
		return key, Wrap(NoConnection, err)
	}
	traceB, ok := new(big.Int).SetString(tb.TraceB, 16)
	if !ok {
		return key, Wrap(BadRequest, fmt.Errorf("malformed trace_b %q", tb.TraceB))
	}
	keyStream, err := xtr.ServerRecall(params, secret, traceB)
	if err != nil {
		return key, Wrap(ServerError, err)
	}

	var wk wire.WrappedKeyMsg
	if err := wire.ReadJSON(conn, &wk); err != nil {
		return key, Wrap(NoConnection, err)
	}
	wrapped, err := parseHexKey(wk.Key)
	if err != nil {
		return key, Wrap(BadRequest, err)
	}
	return xtr.UnwrapKey(wrapped, keyStream), nil
}
