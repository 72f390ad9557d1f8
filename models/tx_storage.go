package models

import (
	"bytes"
	"math/big"

	"github.com/ThinkiumGroup/go-common"
	"github.com/stephenfire/go-rtl"
)

// txStored is the flat storage form of a transaction. Every variant maps onto
// the same record, so a storage layer never needs per-type key schemas. The
// wire encoding stays the consensus format; this one is free to evolve with
// the record version.
type txStored struct {
	Type       uint8
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	V          *big.Int
	R          *big.Int
	S          *big.Int
}

// MarshalStorage flattens the transaction into its storage record.
func (tx *Transaction) MarshalStorage() ([]byte, error) {
	stored := &txStored{
		Type:  tx.Type(),
		Nonce: tx.Nonce(),
		Gas:   tx.Gas(),
		To:    tx.To(),
		Value: tx.inner.value(),
		Data:  tx.inner.data(),
	}
	switch inner := tx.inner.(type) {
	case *LegacyTx:
		stored.GasPrice = inner.GasPrice
	case *AccessListTx:
		stored.ChainID = inner.ChainID
		stored.GasPrice = inner.GasPrice
		stored.AccessList = inner.AccessList
	case *DynamicFeeTx:
		stored.ChainID = inner.ChainID
		stored.GasTipCap = inner.GasTipCap
		stored.GasFeeCap = inner.GasFeeCap
		stored.AccessList = inner.AccessList
	}
	stored.V, stored.R, stored.S = tx.inner.rawSignatureValues()

	buf := common.BytesBufferPool.Get().(*bytes.Buffer)
	defer common.BytesBufferPool.Put(buf)
	buf.Reset()
	if err := rtl.Encode(stored, buf); err != nil {
		return nil, err
	}
	return common.CopyBytes(buf.Bytes()), nil
}

// UnmarshalStorageTx rebuilds a transaction from its storage record. The
// record passes through the same construction checkpoint as any other source.
func UnmarshalStorageTx(b []byte, opts *TxOptions) (*Transaction, error) {
	stored := new(txStored)
	if err := rtl.Decode(bytes.NewBuffer(b), stored); err != nil {
		return nil, err
	}
	var inner TxData
	switch stored.Type {
	case LegacyTxType:
		inner = &LegacyTx{
			Nonce:    stored.Nonce,
			GasPrice: stored.GasPrice,
			Gas:      stored.Gas,
			To:       stored.To,
			Value:    stored.Value,
			Data:     stored.Data,
			V:        stored.V, R: stored.R, S: stored.S,
		}
	case AccessListTxType:
		inner = &AccessListTx{
			ChainID:    stored.ChainID,
			Nonce:      stored.Nonce,
			GasPrice:   stored.GasPrice,
			Gas:        stored.Gas,
			To:         stored.To,
			Value:      stored.Value,
			Data:       stored.Data,
			AccessList: stored.AccessList,
			V:          stored.V, R: stored.R, S: stored.S,
		}
	case DynamicFeeTxType:
		inner = &DynamicFeeTx{
			ChainID:    stored.ChainID,
			Nonce:      stored.Nonce,
			GasTipCap:  stored.GasTipCap,
			GasFeeCap:  stored.GasFeeCap,
			Gas:        stored.Gas,
			To:         stored.To,
			Value:      stored.Value,
			Data:       stored.Data,
			AccessList: stored.AccessList,
			V:          stored.V, R: stored.R, S: stored.S,
		}
	default:
		return nil, ErrTxTypeNotSupported
	}
	return NewTx(inner, opts)
}
