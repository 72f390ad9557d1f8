package models

import (
	"math/big"

	"github.com/ThinkiumGroup/go-common"
)

// DynamicFeeTx is the fee-market transaction layout (type 2).
type DynamicFeeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         *common.Address `rlp:"nil"` // nil means contract creation
	Value      *big.Int
	Data       []byte
	AccessList AccessList

	// Signature values
	V *big.Int `json:"v" gencodec:"required"`
	R *big.Int `json:"r" gencodec:"required"`
	S *big.Int `json:"s" gencodec:"required"`
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *DynamicFeeTx) copy() TxData {
	cpy := &DynamicFeeTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are copied below.
		AccessList: tx.AccessList.copy(),
		Value:      new(big.Int),
		ChainID:    new(big.Int),
		GasTipCap:  new(big.Int),
		GasFeeCap:  new(big.Int),
		V:          new(big.Int),
		R:          new(big.Int),
		S:          new(big.Int),
	}
	if tx.Value != nil {
		cpy.Value.Set(tx.Value)
	}
	if tx.ChainID != nil {
		cpy.ChainID.Set(tx.ChainID)
	}
	if tx.GasTipCap != nil {
		cpy.GasTipCap.Set(tx.GasTipCap)
	}
	if tx.GasFeeCap != nil {
		cpy.GasFeeCap.Set(tx.GasFeeCap)
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
func (tx *DynamicFeeTx) TxType() byte           { return DynamicFeeTxType }
func (tx *DynamicFeeTx) chainID() *big.Int      { return tx.ChainID }
func (tx *DynamicFeeTx) accessList() AccessList { return tx.AccessList }
func (tx *DynamicFeeTx) data() []byte           { return tx.Data }
func (tx *DynamicFeeTx) gas() uint64            { return tx.Gas }
func (tx *DynamicFeeTx) gasFeeCap() *big.Int    { return tx.GasFeeCap }
func (tx *DynamicFeeTx) gasTipCap() *big.Int    { return tx.GasTipCap }
func (tx *DynamicFeeTx) gasPrice() *big.Int     { return tx.GasFeeCap }
func (tx *DynamicFeeTx) value() *big.Int        { return tx.Value }
func (tx *DynamicFeeTx) nonce() uint64          { return tx.Nonce }
func (tx *DynamicFeeTx) to() *common.Address    { return tx.To }

func (tx *DynamicFeeTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *DynamicFeeTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

func (tx *DynamicFeeTx) rawFields() []interface{} {
	return []interface{}{
		bigOrZero(tx.ChainID),
		tx.Nonce,
		bigOrZero(tx.GasTipCap),
		bigOrZero(tx.GasFeeCap),
		tx.Gas,
		tx.To,
		bigOrZero(tx.Value),
		tx.Data,
		tx.AccessList,
		bigOrZero(tx.V),
		bigOrZero(tx.R),
		bigOrZero(tx.S),
	}
}

func (tx *DynamicFeeTx) sigPayload(chainID *big.Int, protected bool) []interface{} {
	cid := tx.ChainID
	if cid == nil {
		cid = chainID
	}
	return []interface{}{
		bigOrZero(cid),
		tx.Nonce,
		bigOrZero(tx.GasTipCap),
		bigOrZero(tx.GasFeeCap),
		tx.Gas,
		tx.To,
		bigOrZero(tx.Value),
		tx.Data,
		tx.AccessList,
	}
}

// upfrontCost reserves the full fee cap, the worst case the account can be
// charged.
func (tx *DynamicFeeTx) upfrontCost() *big.Int {
	cost := new(big.Int).SetUint64(tx.Gas)
	cost.Mul(cost, bigOrZero(tx.GasFeeCap))
	return cost.Add(cost, bigOrZero(tx.Value))
}

// EffectiveGasPrice computes the price actually paid per gas unit under a
// given block base fee.
func (tx *DynamicFeeTx) EffectiveGasPrice(dst *big.Int, baseFee *big.Int) *big.Int {
	if baseFee == nil {
		return dst.Set(tx.GasFeeCap)
	}
	tip := dst.Sub(tx.GasFeeCap, baseFee)
	if tip.Cmp(tx.GasTipCap) > 0 {
		tip.Set(tx.GasTipCap)
	}
	return tip.Add(tip, baseFee)
}
