package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ThinkiumGroup/go-common"
	"github.com/ThinkiumGroup/go-common/hexutil"
	"github.com/ThinkiumGroup/go-common/math"
)

// Quantity is the union numeric representation the transport layer produces:
// empty string, hex string, decimal string, JSON number or a raw byte
// sequence. Arrays and objects are rejected outright, so a malformed call
// site fails at the boundary instead of deep inside fee computation.
type Quantity struct {
	i *big.Int
}

func QuantityFromBig(v *big.Int) *Quantity {
	if v == nil {
		return &Quantity{}
	}
	return &Quantity{i: new(big.Int).Set(v)}
}

func QuantityFromUint64(v uint64) *Quantity {
	return &Quantity{i: new(big.Int).SetUint64(v)}
}

// QuantityFromBytes interprets a byte sequence as an unsigned big-endian
// number.
func QuantityFromBytes(b []byte) *Quantity {
	if len(b) == 0 {
		return &Quantity{}
	}
	return &Quantity{i: new(big.Int).SetBytes(b)}
}

// big returns the canonical integer form, nil when the value was absent or
// empty.
func (q *Quantity) big() *big.Int {
	if q == nil {
		return nil
	}
	return q.i
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		q.i = nil
		return nil
	}
	switch data[0] {
	case '[':
		return errors.New("numeric field must not be an array")
	case '{':
		return errors.New("numeric field must not be an object")
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			// an empty string means the same as an absent value
			q.i = nil
			return nil
		}
		i, ok := math.ParseBig256(s)
		if !ok {
			return fmt.Errorf("cannot parse %q as a 256 bit quantity", s)
		}
		q.i = i
	default:
		i, ok := math.ParseBig256(string(data))
		if !ok {
			return fmt.Errorf("cannot parse %q as a 256 bit quantity", string(data))
		}
		q.i = i
	}
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.i == nil {
		return []byte(`null`), nil
	}
	return json.Marshal((*hexutil.Big)(q.i))
}

// TxArgs is the raw field bag handed in by the transport layer. Field values
// arrive in whatever representation the caller had; NewTransaction
// normalizes them to their canonical form.
type TxArgs struct {
	Type                 *hexutil.Uint64 `json:"type,omitempty"`
	ChainID              *Quantity       `json:"chainId,omitempty"`
	Nonce                *Quantity       `json:"nonce,omitempty"`
	GasPrice             *Quantity       `json:"gasPrice,omitempty"`
	MaxPriorityFeePerGas *Quantity       `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerGas         *Quantity       `json:"maxFeePerGas,omitempty"`
	Gas                  *Quantity       `json:"gas,omitempty"`
	To                   *common.Address `json:"to,omitempty"`
	Value                *Quantity       `json:"value,omitempty"`
	Data                 *hexutil.Bytes  `json:"data,omitempty"`
	Input                *hexutil.Bytes  `json:"input,omitempty"`
	AccessList           *AccessList     `json:"accessList,omitempty"`
	V                    *Quantity       `json:"v,omitempty"`
	R                    *Quantity       `json:"r,omitempty"`
	S                    *Quantity       `json:"s,omitempty"`
}

// payload resolves the two historical names of the data field.
func (args *TxArgs) payload() ([]byte, error) {
	if args.Input != nil && args.Data != nil && !bytes.Equal(*args.Input, *args.Data) {
		return nil, errors.New(`both "input" and "data" are set and not equal`)
	}
	if args.Input != nil {
		return *args.Input, nil
	}
	if args.Data != nil {
		return *args.Data, nil
	}
	return nil, nil
}

// resolveType picks the variant: an explicit tag wins, otherwise the fee
// fields imply fee-market and an access list implies the access-list type.
func (args *TxArgs) resolveType() (byte, error) {
	if args.Type != nil {
		if *args.Type > hexutil.Uint64(DynamicFeeTxType) {
			return 0, ErrTxTypeNotSupported
		}
		return byte(*args.Type), nil
	}
	if args.MaxFeePerGas != nil || args.MaxPriorityFeePerGas != nil {
		return DynamicFeeTxType, nil
	}
	if args.AccessList != nil {
		return AccessListTxType, nil
	}
	return LegacyTxType, nil
}

func quantityToUint64(name string, q *Quantity) (uint64, error) {
	v := q.big()
	if v == nil {
		return 0, nil
	}
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, &ValidationError{msg: name + " exceeds 2^64-1"}
	}
	return v.Uint64(), nil
}

// NewTransaction normalizes a raw field bag and constructs the transaction.
// Everything representation-level fails here; everything rule-level fails in
// NewTx, the single validation checkpoint.
func NewTransaction(args *TxArgs, opts *TxOptions) (*Transaction, error) {
	if args == nil {
		args = &TxArgs{}
	}
	if opts == nil {
		opts = &TxOptions{}
	}
	typ, err := args.resolveType()
	if err != nil {
		return nil, err
	}
	data, err := args.payload()
	if err != nil {
		return nil, &ValidationError{msg: err.Error()}
	}
	nonce, err := quantityToUint64("nonce", args.Nonce)
	if err != nil {
		return nil, err
	}
	gas, err := quantityToUint64("gasLimit", args.Gas)
	if err != nil {
		return nil, err
	}

	var v, r, s *big.Int
	if args.V != nil && args.R != nil && args.S != nil {
		v, r, s = args.V.big(), args.R.big(), args.S.big()
	}
	var accessList AccessList
	if args.AccessList != nil {
		accessList = *args.AccessList
	}

	var inner TxData
	switch typ {
	case LegacyTxType:
		inner = &LegacyTx{
			Nonce:    nonce,
			GasPrice: args.GasPrice.big(),
			Gas:      gas,
			To:       copyAddressPtr(args.To),
			Value:    args.Value.big(),
			Data:     data,
			V:        v, R: r, S: s,
		}
	case AccessListTxType:
		inner = &AccessListTx{
			ChainID:    args.ChainID.big(),
			Nonce:      nonce,
			GasPrice:   args.GasPrice.big(),
			Gas:        gas,
			To:         copyAddressPtr(args.To),
			Value:      args.Value.big(),
			Data:       data,
			AccessList: accessList,
			V:          v, R: r, S: s,
		}
	case DynamicFeeTxType:
		inner = &DynamicFeeTx{
			ChainID:    args.ChainID.big(),
			Nonce:      nonce,
			GasTipCap:  args.MaxPriorityFeePerGas.big(),
			GasFeeCap:  args.MaxFeePerGas.big(),
			Gas:        gas,
			To:         copyAddressPtr(args.To),
			Value:      args.Value.big(),
			Data:       data,
			AccessList: accessList,
			V:          v, R: r, S: s,
		}
	}

	if opts.ChainID == nil && args.ChainID.big() != nil {
		cpy := *opts
		cpy.ChainID = args.ChainID.big()
		opts = &cpy
	}
	return NewTx(inner, opts)
}
