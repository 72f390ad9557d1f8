package models

import (
	"math/big"

	"github.com/ThinkiumGroup/go-common"
)

// AccessList is the declared state access of a transaction.
type AccessList []AccessTuple

// AccessTuple is one entry of an AccessList.
type AccessTuple struct {
	Address     common.Address `json:"address" gencodec:"required"`
	StorageKeys []common.Hash  `json:"storageKeys" gencodec:"required"`
}

// StorageKeys returns the total number of storage keys in the access list.
func (al AccessList) StorageKeys() int {
	sum := 0
	for _, tuple := range al {
		sum += len(tuple.StorageKeys)
	}
	return sum
}

func (al AccessList) copy() AccessList {
	if al == nil {
		return nil
	}
	cpy := make(AccessList, len(al))
	for i, tuple := range al {
		cpy[i].Address = tuple.Address
		cpy[i].StorageKeys = make([]common.Hash, len(tuple.StorageKeys))
		copy(cpy[i].StorageKeys, tuple.StorageKeys)
	}
	return cpy
}

// AccessListTx is the transaction layout introduced by the typed envelope
// together with access lists (type 1).
type AccessListTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
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
func (tx *AccessListTx) copy() TxData {
	cpy := &AccessListTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are copied below.
		AccessList: tx.AccessList.copy(),
		GasPrice:   new(big.Int),
		Value:      new(big.Int),
		ChainID:    new(big.Int),
		V:          new(big.Int),
		R:          new(big.Int),
		S:          new(big.Int),
	}
	if tx.GasPrice != nil {
		cpy.GasPrice.Set(tx.GasPrice)
	}
	if tx.Value != nil {
		cpy.Value.Set(tx.Value)
	}
	if tx.ChainID != nil {
		cpy.ChainID.Set(tx.ChainID)
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
func (tx *AccessListTx) TxType() byte           { return AccessListTxType }
func (tx *AccessListTx) chainID() *big.Int      { return tx.ChainID }
func (tx *AccessListTx) accessList() AccessList { return tx.AccessList }
func (tx *AccessListTx) data() []byte           { return tx.Data }
func (tx *AccessListTx) gas() uint64            { return tx.Gas }
func (tx *AccessListTx) gasPrice() *big.Int     { return tx.GasPrice }
func (tx *AccessListTx) gasTipCap() *big.Int    { return tx.GasPrice }
func (tx *AccessListTx) gasFeeCap() *big.Int    { return tx.GasPrice }
func (tx *AccessListTx) value() *big.Int        { return tx.Value }
func (tx *AccessListTx) nonce() uint64          { return tx.Nonce }
func (tx *AccessListTx) to() *common.Address    { return tx.To }

func (tx *AccessListTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *AccessListTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

func (tx *AccessListTx) rawFields() []interface{} {
	return []interface{}{
		bigOrZero(tx.ChainID),
		tx.Nonce,
		bigOrZero(tx.GasPrice),
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

func (tx *AccessListTx) sigPayload(chainID *big.Int, protected bool) []interface{} {
	cid := tx.ChainID
	if cid == nil {
		cid = chainID
	}
	return []interface{}{
		bigOrZero(cid),
		tx.Nonce,
		bigOrZero(tx.GasPrice),
		tx.Gas,
		tx.To,
		bigOrZero(tx.Value),
		tx.Data,
		tx.AccessList,
	}
}

func (tx *AccessListTx) upfrontCost() *big.Int {
	cost := new(big.Int).SetUint64(tx.Gas)
	cost.Mul(cost, bigOrZero(tx.GasPrice))
	return cost.Add(cost, bigOrZero(tx.Value))
}
