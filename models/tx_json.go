package models

import (
	"encoding/json"

	"github.com/ThinkiumGroup/go-common"
	"github.com/ThinkiumGroup/go-common/hexutil"
)

// TxJSON is the wire view of a transaction. Field names follow the transport
// convention, so marshaling a transaction and feeding the result back through
// TransactionFromJSON reconstructs an equivalent instance.
type TxJSON struct {
	Type                 hexutil.Uint64  `json:"type"`
	ChainID              *hexutil.Big    `json:"chainId,omitempty"`
	Nonce                hexutil.Uint64  `json:"nonce"`
	GasPrice             *hexutil.Big    `json:"gasPrice,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	Gas                  hexutil.Uint64  `json:"gas"`
	To                   *common.Address `json:"to"`
	Value                *hexutil.Big    `json:"value"`
	Input                hexutil.Bytes   `json:"input"`
	AccessList           *AccessList     `json:"accessList,omitempty"`
	V                    *hexutil.Big    `json:"v,omitempty"`
	R                    *hexutil.Big    `json:"r,omitempty"`
	S                    *hexutil.Big    `json:"s,omitempty"`
	Hash                 *common.Hash    `json:"hash,omitempty"`
}

// ToJSON builds the wire view. The hash is only present once the transaction
// is signed, matching the signed-only availability of Hash in diagnostics.
func (tx *Transaction) ToJSON() *TxJSON {
	out := &TxJSON{
		Type:  hexutil.Uint64(tx.Type()),
		Nonce: hexutil.Uint64(tx.Nonce()),
		Gas:   hexutil.Uint64(tx.Gas()),
		To:    tx.To(),
		Value: (*hexutil.Big)(tx.inner.value()),
		Input: hexutil.Bytes(tx.Data()),
	}
	switch inner := tx.inner.(type) {
	case *LegacyTx:
		out.GasPrice = (*hexutil.Big)(inner.GasPrice)
		if tx.Protected() {
			out.ChainID = (*hexutil.Big)(tx.ChainID())
		}
	case *AccessListTx:
		out.ChainID = (*hexutil.Big)(inner.ChainID)
		out.GasPrice = (*hexutil.Big)(inner.GasPrice)
		al := inner.AccessList
		out.AccessList = &al
	case *DynamicFeeTx:
		out.ChainID = (*hexutil.Big)(inner.ChainID)
		out.MaxPriorityFeePerGas = (*hexutil.Big)(inner.GasTipCap)
		out.MaxFeePerGas = (*hexutil.Big)(inner.GasFeeCap)
		al := inner.AccessList
		out.AccessList = &al
	}
	if v, r, s := tx.inner.rawSignatureValues(); v != nil && r != nil && s != nil {
		out.V = (*hexutil.Big)(v)
		out.R = (*hexutil.Big)(r)
		out.S = (*hexutil.Big)(s)
	}
	if tx.IsSigned() {
		h := tx.Hash()
		out.Hash = &h
	}
	return out
}

func (tx *Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(tx.ToJSON())
}

// TransactionFromJSON parses the wire view back into a transaction. Unknown
// or malformed numeric fields fail at the boundary.
func TransactionFromJSON(data []byte, opts *TxOptions) (*Transaction, error) {
	var args TxArgs
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, err
	}
	return NewTransaction(&args, opts)
}
