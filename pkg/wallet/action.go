// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"

	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
)

var (
	// ErrUnknownOutpoint indicates an input referencing an outpoint this
	// wallet never created.
	ErrUnknownOutpoint = errors.New("unknown outpoint")

	// ErrOutpointSpent indicates an input referencing an already spent
	// outpoint.
	ErrOutpointSpent = errors.New("outpoint already spent")

	// ErrEmptyAction indicates an action with neither inputs nor outputs.
	ErrEmptyAction = errors.New("action has no inputs or outputs")

	errMalformedScript = errors.New("malformed locking script")
)

// ledger tracks the outputs this wallet has created and which of them have
// been spent. Spending an outpoint twice is rejected.
type ledger struct {
	mu    sync.Mutex
	spent map[string]bool
}

func newLedger() *ledger {
	return &ledger{spent: make(map[string]bool)}
}

// CreateAction constructs a transaction with the requested inputs and
// outputs, registers the new outputs and returns the transaction ID. Inputs
// must reference unspent outputs previously created through this wallet.
func (w *Wallet) CreateAction(ctx context.Context, args certs.CreateActionArgs) (certs.ActionResult, error) {
	if len(args.Inputs) == 0 && len(args.Outputs) == 0 {
		return certs.ActionResult{}, ErrEmptyAction
	}

	raw, err := serializeTx(args)
	if err != nil {
		return certs.ActionResult{}, err
	}
	txid := computeTxID(raw)

	w.ledger.mu.Lock()
	defer w.ledger.mu.Unlock()

	for _, input := range args.Inputs {
		consumed, ok := w.ledger.spent[input.Outpoint]
		if !ok {
			return certs.ActionResult{}, errors.Wrap(ErrUnknownOutpoint, errors.New(input.Outpoint))
		}
		if consumed {
			return certs.ActionResult{}, errors.Wrap(ErrOutpointSpent, errors.New(input.Outpoint))
		}
	}
	for _, input := range args.Inputs {
		w.ledger.spent[input.Outpoint] = true
	}
	for i := range args.Outputs {
		w.ledger.spent[certs.Outpoint(txid, uint32(i))] = false
	}

	return certs.ActionResult{TxID: txid}, nil
}

// serializeTx lays the action out in wire transaction format: version,
// inputs, outputs, locktime.
func serializeTx(args certs.CreateActionArgs) ([]byte, error) {
	var raw []byte
	var u32 [4]byte
	var u64 [8]byte

	binary.LittleEndian.PutUint32(u32[:], 1)
	raw = append(raw, u32[:]...)

	raw = append(raw, varint(uint64(len(args.Inputs)))...)
	for _, input := range args.Inputs {
		txid, index, err := certs.ParseOutpoint(input.Outpoint)
		if err != nil {
			return nil, err
		}
		prev, err := hex.DecodeString(txid)
		if err != nil {
			return nil, errors.Wrap(certs.ErrInvalidOutpoint, err)
		}
		raw = append(raw, reverse(prev)...)
		binary.LittleEndian.PutUint32(u32[:], index)
		raw = append(raw, u32[:]...)
		raw = append(raw, 0x00)
		binary.LittleEndian.PutUint32(u32[:], 0xffffffff)
		raw = append(raw, u32[:]...)
	}

	raw = append(raw, varint(uint64(len(args.Outputs)))...)
	for _, output := range args.Outputs {
		binary.LittleEndian.PutUint64(u64[:], output.Satoshis)
		raw = append(raw, u64[:]...)
		script, err := hex.DecodeString(output.LockingScript)
		if err != nil {
			return nil, errors.Wrap(errMalformedScript, err)
		}
		raw = append(raw, varint(uint64(len(script)))...)
		raw = append(raw, script...)
	}

	binary.LittleEndian.PutUint32(u32[:], 0)
	raw = append(raw, u32[:]...)

	return raw, nil
}

// computeTxID returns the hex transaction ID: the double SHA-256 of the raw
// transaction, byte-reversed.
func computeTxID(raw []byte) string {
	first := sha256.Sum256(raw)
	second := sha256.Sum256(first[:])

	return hex.EncodeToString(reverse(second[:]))
}

func varint(n uint64) []byte {
	switch {
	case n < 0xfd:
		return []byte{byte(n)}
	case n <= 0xffff:
		buf := []byte{0xfd, 0, 0}
		binary.LittleEndian.PutUint16(buf[1:], uint16(n))
		return buf
	case n <= 0xffffffff:
		buf := []byte{0xfe, 0, 0, 0, 0}
		binary.LittleEndian.PutUint32(buf[1:], uint32(n))
		return buf
	default:
		buf := []byte{0xff, 0, 0, 0, 0, 0, 0, 0, 0}
		binary.LittleEndian.PutUint64(buf[1:], n)
		return buf
	}
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
