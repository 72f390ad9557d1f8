package models

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ThinkiumGroup/go-common"
	"github.com/ThinkiumGroup/go-common/math"
	"github.com/ThinkiumGroup/go-common/rlp"
	"github.com/abdulrahman305/web3.js/config"
	"github.com/abdulrahman305/web3.js/consts"
	"github.com/holiman/uint256"
)

var (
	ErrTxTypeNotSupported = errors.New("transaction type not supported")
	errEmptyTypedTx       = errors.New("empty typed transaction bytes")
)

// TxOptions carries the construction options supplied by the caller.
type TxOptions struct {
	// ChainConfig is the configuration the transaction will own a copy of.
	ChainConfig *config.ChainConfig
	// ChainID requests a configuration scope when no ChainConfig is given,
	// and must agree with ChainConfig when both are set.
	ChainID *big.Int
	// AllowUnlimitedInitCode opts out of the init-code size ceiling.
	AllowUnlimitedInitCode bool
}

// Transaction is an immutable transaction of any supported type. All derived
// operations assume the fields were validated at construction; signing
// produces a new instance and never mutates the receiver.
type Transaction struct {
	inner TxData              // Consensus contents of a transaction
	conf  *config.ChainConfig // Owned copy, never aliased between instances

	capabilities   []Capability
	allowUnlimited bool

	// caches
	hash    atomic.Value
	from    atomic.Value
	dataFee dataFeeCache
}

// dataFeeCache is a write-once-per-fork memo cell. The fork name is part of
// the key so a hardfork change recomputes instead of returning a stale fee.
type dataFeeCache struct {
	mu    sync.Mutex
	fork  config.Hardfork
	value *big.Int
}

// NewTx creates a transaction from already-canonical field data. This is the
// single validation checkpoint: every field ceiling, the init-code limit and
// the signature shape rules are enforced here.
func NewTx(inner TxData, opts *TxOptions) (*Transaction, error) {
	if inner == nil {
		return nil, &ValidationError{msg: "nil transaction data"}
	}
	if opts == nil {
		opts = &TxOptions{}
	}
	requested := opts.ChainID
	if requested == nil {
		requested = inner.chainID()
	}
	conf, err := config.ResolveChainConfig(opts.ChainConfig, requested)
	if err != nil {
		return nil, err
	}
	tx := &Transaction{
		inner:          inner.copy(),
		conf:           conf,
		allowUnlimited: opts.AllowUnlimitedInitCode,
	}
	if err := tx.normalizeChainID(); err != nil {
		return nil, err
	}
	if err := tx.validateFields(); err != nil {
		return nil, err
	}
	tx.capabilities = computeCapabilities(tx.inner, tx.conf)
	return tx, nil
}

// normalizeChainID pins the chain id of typed transactions to the resolved
// configuration.
func (tx *Transaction) normalizeChainID() error {
	switch inner := tx.inner.(type) {
	case *LegacyTx:
		return nil
	case *AccessListTx:
		if inner.ChainID == nil || inner.ChainID.Sign() == 0 {
			inner.ChainID = math.CopyBigInt(tx.conf.ChainID)
			return nil
		}
		if inner.ChainID.Cmp(tx.conf.ChainID) != 0 {
			return tx.validationError("chainId %s does not match the configured chain %s",
				math.BigIntForPrint(inner.ChainID), math.BigIntForPrint(tx.conf.ChainID))
		}
	case *DynamicFeeTx:
		if inner.ChainID == nil || inner.ChainID.Sign() == 0 {
			inner.ChainID = math.CopyBigInt(tx.conf.ChainID)
			return nil
		}
		if inner.ChainID.Cmp(tx.conf.ChainID) != 0 {
			return tx.validationError("chainId %s does not match the configured chain %s",
				math.BigIntForPrint(inner.ChainID), math.BigIntForPrint(tx.conf.ChainID))
		}
	default:
		return ErrTxTypeNotSupported
	}
	return nil
}

func (tx *Transaction) validateFields() error {
	if tx.inner.nonce() == math.MaxUint64 {
		return tx.validationError("nonce must be less than 2^64-1")
	}
	for _, f := range []struct {
		name string
		v    *big.Int
	}{
		{"value", tx.inner.value()},
		{"gasPrice", tx.inner.gasPrice()},
		{"maxPriorityFeePerGas", tx.inner.gasTipCap()},
		{"maxFeePerGas", tx.inner.gasFeeCap()},
	} {
		if err := tx.check256(f.name, f.v); err != nil {
			return err
		}
	}
	v, r, s := tx.inner.rawSignatureValues()
	if err := tx.check256("v", v); err != nil {
		return err
	}
	if err := tx.check256("r", r); err != nil {
		return err
	}
	if err := tx.check256("s", s); err != nil {
		return err
	}
	if tx.Type() != LegacyTxType && v != nil && v.Sign() != 0 && v.Cmp(big.NewInt(1)) > 0 {
		return tx.validationError("v must be 0 or 1 for typed transactions, got %s", math.BigIntForPrint(v))
	}
	if dtx, ok := tx.inner.(*DynamicFeeTx); ok {
		if dtx.GasFeeCap != nil && dtx.GasTipCap != nil && dtx.GasFeeCap.Cmp(dtx.GasTipCap) < 0 {
			return tx.validationError("maxFeePerGas %s below maxPriorityFeePerGas %s",
				math.BigIntForPrint(dtx.GasFeeCap), math.BigIntForPrint(dtx.GasTipCap))
		}
	}
	if tx.ToCreationAddress() && tx.conf.IsActivated(3860) && !tx.allowUnlimited {
		if limit := tx.conf.Param("maxInitCodeSize"); uint64(len(tx.inner.data())) > limit {
			return tx.validationError("init code size %d exceeds the limit of %d", len(tx.inner.data()), limit)
		}
	}
	return nil
}

// check256 enforces the 256 bit field ceiling; uint256 reports the overflow.
func (tx *Transaction) check256(name string, v *big.Int) error {
	if v == nil {
		return nil
	}
	if v.Sign() < 0 {
		return tx.validationError("%s must not be negative", name)
	}
	if _, overflow := uint256.FromBig(v); overflow {
		return tx.validationError("%s exceeds 2^256-1", name)
	}
	return nil
}

// computeCapabilities projects the engaged protocol features from the type
// tag, the signature shape and the configured hardfork. Capabilities are
// static for the lifetime of the instance.
func computeCapabilities(inner TxData, conf *config.ChainConfig) []Capability {
	switch inner.TxType() {
	case AccessListTxType:
		return []Capability{TypedTransactionCapability, ReplayProtectionCapability, AccessListsCapability}
	case DynamicFeeTxType:
		return []Capability{TypedTransactionCapability, ReplayProtectionCapability, AccessListsCapability, FeeMarketCapability}
	default:
		caps := make([]Capability, 0, 1)
		if conf.IsAtLeast(config.SpuriousDragon) {
			v, _, _ := inner.rawSignatureValues()
			if v == nil || v.Sign() == 0 || isProtectedV(v) {
				caps = append(caps, ReplayProtectionCapability)
			}
		}
		return caps
	}
}

// Supports is a pure membership check against the engaged capabilities, so
// variant-agnostic code can branch on feature instead of type.
func (tx *Transaction) Supports(capability Capability) bool {
	for _, c := range tx.capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities returns the engaged capability flags in activation order.
func (tx *Transaction) Capabilities() []Capability {
	cpy := make([]Capability, len(tx.capabilities))
	copy(cpy, tx.capabilities)
	return cpy
}

// Type returns the transaction type.
func (tx *Transaction) Type() byte {
	if tx.inner == nil {
		return LegacyTxType
	}
	return tx.inner.TxType()
}

// ChainConfig returns the configuration this transaction owns. The instance
// is not shared with any other transaction.
func (tx *Transaction) ChainConfig() *config.ChainConfig { return tx.conf }

// ChainID returns the chain the transaction is bound to, nil for unprotected
// legacy transactions.
func (tx *Transaction) ChainID() *big.Int { return tx.inner.chainID() }

// Data returns the input data of the transaction.
func (tx *Transaction) Data() []byte { return common.CopyBytes(tx.inner.data()) }

// AccessList returns the access list of the transaction.
func (tx *Transaction) AccessList() AccessList { return tx.inner.accessList() }

// Gas returns the gas limit of the transaction.
func (tx *Transaction) Gas() uint64 { return tx.inner.gas() }

// GasPrice returns the gas price of the transaction.
func (tx *Transaction) GasPrice() *big.Int { return new(big.Int).Set(bigOrZero(tx.inner.gasPrice())) }

// GasTipCap returns the gasTipCap per gas of the transaction.
func (tx *Transaction) GasTipCap() *big.Int { return new(big.Int).Set(bigOrZero(tx.inner.gasTipCap())) }

// GasFeeCap returns the fee cap per gas of the transaction.
func (tx *Transaction) GasFeeCap() *big.Int { return new(big.Int).Set(bigOrZero(tx.inner.gasFeeCap())) }

// Value returns the wei amount of the transaction.
func (tx *Transaction) Value() *big.Int { return new(big.Int).Set(bigOrZero(tx.inner.value())) }

// Nonce returns the sender account nonce of the transaction.
func (tx *Transaction) Nonce() uint64 { return tx.inner.nonce() }

// To returns the recipient address of the transaction.
// For contract-creation transactions, To returns nil.
func (tx *Transaction) To() *common.Address {
	return copyAddressPtr(tx.inner.to())
}

// ToCreationAddress reports whether the transaction creates a contract.
func (tx *Transaction) ToCreationAddress() bool {
	return tx.inner.to() == nil
}

func (tx *Transaction) RawSignatureValues() (v, r, s *big.Int) {
	return tx.inner.rawSignatureValues()
}

// IsSigned reports whether all three signature components are present.
// Partial presence counts as unsigned.
func (tx *Transaction) IsSigned() bool {
	v, r, s := tx.inner.rawSignatureValues()
	return v != nil && r != nil && s != nil && r.Sign() != 0 && s.Sign() != 0
}

// Protected says whether the transaction is replay-protected.
func (tx *Transaction) Protected() bool {
	switch inner := tx.inner.(type) {
	case *LegacyTx:
		return inner.V != nil && isProtectedV(inner.V)
	default:
		return true
	}
}

// DataFee sums the per-byte costs of the payload, plus the per-word creation
// surcharge once the init-code rule is active. The result is memoized against
// the hardfork it was computed under.
func (tx *Transaction) DataFee() *big.Int {
	tx.dataFee.mu.Lock()
	defer tx.dataFee.mu.Unlock()
	if tx.dataFee.value != nil && tx.dataFee.fork == tx.conf.Fork {
		return new(big.Int).Set(tx.dataFee.value)
	}

	zeroGas := tx.conf.Param("txDataZeroGas")
	nonZeroGas := tx.conf.Param("txDataNonZeroGas")
	var zeros, nonZeros uint64
	for _, b := range tx.inner.data() {
		if b == 0 {
			zeros++
		} else {
			nonZeros++
		}
	}
	fee := new(big.Int).SetUint64(zeros * zeroGas)
	fee.Add(fee, new(big.Int).SetUint64(nonZeros*nonZeroGas))

	if tx.ToCreationAddress() && tx.conf.IsActivated(3860) {
		words := (uint64(len(tx.inner.data())) + consts.InitCodeWordSize - 1) / consts.InitCodeWordSize
		fee.Add(fee, new(big.Int).SetUint64(words*tx.conf.Param("initCodeWordGas")))
	}

	tx.dataFee.fork = tx.conf.Fork
	tx.dataFee.value = new(big.Int).Set(fee)
	return fee
}

// BaseFee is the intrinsic fee: data fee plus the flat per-transaction fee,
// plus the flat creation surcharge where the rules charge one.
func (tx *Transaction) BaseFee() *big.Int {
	fee := tx.DataFee()
	fee.Add(fee, new(big.Int).SetUint64(tx.conf.Param("txGas")))
	if tx.ToCreationAddress() && tx.conf.IsAtLeast(config.Homestead) {
		fee.Add(fee, new(big.Int).SetUint64(tx.conf.Param("txCreationGas")))
	}
	return fee
}

// UpfrontCost is the total the sender account must hold for the transaction
// to be payable.
func (tx *Transaction) UpfrontCost() *big.Int {
	return tx.inner.upfrontCost()
}

// ValidationMessages collects every rule violation into an ordered list of
// human-readable messages. It never fails: a caller gets the full diagnostic
// picture instead of the first problem.
func (tx *Transaction) ValidationMessages() []string {
	msgs := make([]string, 0, 2)
	baseFee := tx.BaseFee()
	if gas := new(big.Int).SetUint64(tx.inner.gas()); baseFee.Cmp(gas) > 0 {
		msgs = append(msgs, fmt.Sprintf("gas limit is too low. given %s, need at least %s", gas, baseFee))
	}
	if tx.IsSigned() {
		if tx.conf.IsAtLeast(config.Homestead) {
			if _, _, s := tx.inner.rawSignatureValues(); s != nil && s.Cmp(secp256k1HalfN) > 0 {
				msgs = append(msgs, "s value is above the upper half of the curve order")
			}
		}
		if !tx.VerifySignature() {
			msgs = append(msgs, "invalid signature")
		}
	}
	return msgs
}

// Valid is the short-circuiting form of ValidationMessages.
func (tx *Transaction) Valid() bool {
	baseFee := tx.BaseFee()
	if baseFee.Cmp(new(big.Int).SetUint64(tx.inner.gas())) > 0 {
		return false
	}
	if tx.IsSigned() && !tx.VerifySignature() {
		return false
	}
	return true
}

// RawFields returns the ordered field array of the canonical list-encoding.
func (tx *Transaction) RawFields() []interface{} {
	return tx.inner.rawFields()
}

// Serialize returns the canonical byte encoding: the plain field list for
// legacy transactions, the type-prefixed envelope otherwise.
func (tx *Transaction) Serialize() ([]byte, error) {
	payload, err := rlp.EncodeToBytes(tx.inner.rawFields())
	if err != nil {
		return nil, err
	}
	if tx.Type() == LegacyTxType {
		return payload, nil
	}
	return append([]byte{tx.Type()}, payload...), nil
}

// MessageToSign returns the signing material: the canonical unsigned encoding
// when hashed is false, its 32 byte digest when true. The view follows the
// engaged capabilities, so an instance pinned to an unprotected signature
// reports the digest that signature actually covers. Sign applies the
// hardfork fallback on top of this for not-yet-signed legacy transactions.
func (tx *Transaction) MessageToSign(hashed bool) ([]byte, error) {
	protected := tx.Type() != LegacyTxType || tx.Supports(ReplayProtectionCapability)
	return tx.messageToSign(hashed, protected)
}

func (tx *Transaction) messageToSign(hashed bool, protected bool) ([]byte, error) {
	payload, err := rlp.EncodeToBytes(tx.inner.sigPayload(tx.conf.ChainID, protected))
	if err != nil {
		return nil, err
	}
	if tx.Type() != LegacyTxType {
		payload = append([]byte{tx.Type()}, payload...)
	}
	if !hashed {
		return payload, nil
	}
	h := keccak256(payload)
	return h.Slice(), nil
}

// Hash returns the digest of the canonical encoding, computed lazily.
func (tx *Transaction) Hash() common.Hash {
	if h := tx.hash.Load(); h != nil {
		return h.(common.Hash)
	}
	enc, err := tx.Serialize()
	if err != nil {
		return common.Hash{}
	}
	h := keccak256(enc)
	tx.hash.Store(h)
	return h
}

func (tx *Transaction) String() string {
	to := "<creation>"
	if a := tx.inner.to(); a != nil {
		to = fmt.Sprintf("%x", a[:])
	}
	return fmt.Sprintf("Tx{type:%d chainid:%s nonce:%d gas:%d to:%s value:%s datalen:%d signed:%t}",
		tx.Type(), math.BigIntForPrint(tx.inner.chainID()), tx.inner.nonce(), tx.inner.gas(),
		to, math.BigIntForPrint(tx.inner.value()), len(tx.inner.data()), tx.IsSigned())
}

// DecodeTransaction parses a transaction from its canonical byte encoding.
func DecodeTransaction(b []byte, opts *TxOptions) (*Transaction, error) {
	if len(b) == 0 {
		return nil, errEmptyTypedTx
	}
	if b[0] > 0x7f {
		// It's a legacy transaction.
		var inner LegacyTx
		if err := rlp.DecodeBytes(b, &inner); err != nil {
			return nil, err
		}
		return NewTx(&inner, opts)
	}
	// It's a typed transaction envelope.
	inner, err := decodeTyped(b)
	if err != nil {
		return nil, err
	}
	return NewTx(inner, opts)
}

// decodeTyped decodes a typed transaction from the canonical format.
func decodeTyped(b []byte) (TxData, error) {
	if len(b) <= 1 {
		return nil, errEmptyTypedTx
	}
	switch b[0] {
	case AccessListTxType:
		var inner AccessListTx
		err := rlp.DecodeBytes(b[1:], &inner)
		return &inner, err
	case DynamicFeeTxType:
		var inner DynamicFeeTx
		err := rlp.DecodeBytes(b[1:], &inner)
		return &inner, err
	default:
		return nil, ErrTxTypeNotSupported
	}
}
