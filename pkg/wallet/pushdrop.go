// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"context"
	"encoding/binary"
	"encoding/hex"

	"github.com/p2ppsr/generic-certifier-backend/certs"
)

// Script opcodes used by pushdrop locking scripts.
const (
	opPushdata1 = 0x4c
	opPushdata2 = 0x4d
	opPushdata4 = 0x4e
	op2Drop     = 0x6d
	opDrop      = 0x75
	opCheckSig  = 0xac
)

// CreateLockingScript builds a pushdrop locking script: the derived public
// key followed by OP_CHECKSIG, then the data fields as pushes dropped from
// the stack. The script is spendable only by the key derived from the same
// protocol, key ID and counterparty, which this wallet can re-derive.
func (w *Wallet) CreateLockingScript(ctx context.Context, args certs.LockArgs) (string, error) {
	priv, err := w.derivePrivateKey(args.ProtocolID, args.KeyID, args.Counterparty)
	if err != nil {
		return "", err
	}

	script := pushData(priv.PubKey().SerializeCompressed())
	script = append(script, opCheckSig)

	for _, field := range args.Fields {
		script = append(script, pushData(field)...)
	}

	// Drop the pushed fields in pairs, then a single drop for an odd count.
	remaining := len(args.Fields)
	for remaining > 1 {
		script = append(script, op2Drop)
		remaining -= 2
	}
	if remaining == 1 {
		script = append(script, opDrop)
	}

	return hex.EncodeToString(script), nil
}

// pushData encodes a minimal data push for the given bytes.
func pushData(data []byte) []byte {
	n := len(data)
	switch {
	case n <= 75:
		return append([]byte{byte(n)}, data...)
	case n <= 0xff:
		return append([]byte{opPushdata1, byte(n)}, data...)
	case n <= 0xffff:
		prefix := []byte{opPushdata2, 0, 0}
		binary.LittleEndian.PutUint16(prefix[1:], uint16(n))
		return append(prefix, data...)
	default:
		prefix := []byte{opPushdata4, 0, 0, 0, 0}
		binary.LittleEndian.PutUint32(prefix[1:], uint32(n))
		return append(prefix, data...)
	}
}
