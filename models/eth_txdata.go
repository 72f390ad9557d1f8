package models

import (
	"math/big"

	"github.com/ThinkiumGroup/go-common"
)

// TxData is implemented by LegacyTx, AccessListTx and DynamicFeeTx. The
// variant set is closed: dispatch goes through the type tag, never through
// open-ended extension.
type TxData interface {
	TxType() byte // returns the type ID
	copy() TxData // creates a deep copy and initializes all fields

	chainID() *big.Int
	accessList() AccessList
	data() []byte
	gas() uint64
	gasPrice() *big.Int
	gasTipCap() *big.Int
	gasFeeCap() *big.Int
	value() *big.Int
	nonce() uint64
	to() *common.Address

	rawSignatureValues() (v, r, s *big.Int)
	setSignatureValues(chainID, v, r, s *big.Int)

	// rawFields is the ordered field list of the canonical list-encoding,
	// signature components included (empty when unsigned).
	rawFields() []interface{}

	// sigPayload is the field list digested for signing. protected only
	// affects the legacy type, where it appends the chain-id material.
	sigPayload(chainID *big.Int, protected bool) []interface{}

	// upfrontCost is the total value an account must hold for the
	// transaction to be payable: gas budget in wei plus transferred value.
	upfrontCost() *big.Int
}

func copyAddressPtr(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	cpy := *a
	return &cpy
}

// bigOrZero keeps nil big ints out of the canonical encoding, where absence
// is an empty item.
func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
