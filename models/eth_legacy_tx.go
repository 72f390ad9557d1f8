package models

import (
	"math/big"

	"github.com/ThinkiumGroup/go-common"
)

// LegacyTx is the original transaction layout (type 0). The chain id is not a
// field of its own; replay protection folds it into V.
type LegacyTx struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address `rlp:"nil"` // nil means contract creation
	Value    *big.Int
	Data     []byte

	// Signature values
	V *big.Int `json:"v" gencodec:"required"`
	R *big.Int `json:"r" gencodec:"required"`
	S *big.Int `json:"s" gencodec:"required"`
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *LegacyTx) copy() TxData {
	cpy := &LegacyTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are copied below.
		GasPrice: new(big.Int),
		Value:    new(big.Int),
		V:        new(big.Int),
		R:        new(big.Int),
		S:        new(big.Int),
	}
	if tx.GasPrice != nil {
		cpy.GasPrice.Set(tx.GasPrice)
	}
	if tx.Value != nil {
		cpy.Value.Set(tx.Value)
	}
	if tx.V != nil {
		cpy.V.Set(tx.V)
	}
	if tx.R != nil {
		cpy.R.Set(tx.R)
	}
	if tx.S != nil {
		cpy.S.Set(tx.S)
	}
	return cpy
}

// TxType accessors for innerTx.
func (tx *LegacyTx) TxType() byte           { return LegacyTxType }
func (tx *LegacyTx) accessList() AccessList { return nil }
func (tx *LegacyTx) data() []byte           { return tx.Data }
func (tx *LegacyTx) gas() uint64            { return tx.Gas }
func (tx *LegacyTx) gasPrice() *big.Int     { return tx.GasPrice }
func (tx *LegacyTx) gasTipCap() *big.Int    { return tx.GasPrice }
func (tx *LegacyTx) gasFeeCap() *big.Int    { return tx.GasPrice }
func (tx *LegacyTx) value() *big.Int        { return tx.Value }
func (tx *LegacyTx) nonce() uint64          { return tx.Nonce }
func (tx *LegacyTx) to() *common.Address    { return tx.To }

// chainID reports the chain bound by a replay-protected signature, nil when
// the signature is unprotected or absent.
func (tx *LegacyTx) chainID() *big.Int {
	if tx.V != nil && isProtectedV(tx.V) {
		return deriveChainID(tx.V)
	}
	return nil
}

func (tx *LegacyTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *LegacyTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.V, tx.R, tx.S = v, r, s
}

func (tx *LegacyTx) rawFields() []interface{} {
	return []interface{}{
		tx.Nonce,
		bigOrZero(tx.GasPrice),
		tx.Gas,
		tx.To,
		bigOrZero(tx.Value),
		tx.Data,
		bigOrZero(tx.V),
		bigOrZero(tx.R),
		bigOrZero(tx.S),
	}
}

func (tx *LegacyTx) sigPayload(chainID *big.Int, protected bool) []interface{} {
	fields := []interface{}{
		tx.Nonce,
		bigOrZero(tx.GasPrice),
		tx.Gas,
		tx.To,
		bigOrZero(tx.Value),
		tx.Data,
	}
	if protected {
		fields = append(fields, bigOrZero(chainID), uint(0), uint(0))
	}
	return fields
}

func (tx *LegacyTx) upfrontCost() *big.Int {
	cost := new(big.Int).SetUint64(tx.Gas)
	cost.Mul(cost, bigOrZero(tx.GasPrice))
	return cost.Add(cost, bigOrZero(tx.Value))
}
