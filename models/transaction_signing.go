package models

import (
	"errors"
	"math/big"

	"github.com/ThinkiumGroup/go-cipher"
	"github.com/ThinkiumGroup/go-common"
	"github.com/ThinkiumGroup/go-common/log"
	"github.com/ThinkiumGroup/go-common/math"
	"github.com/ThinkiumGroup/go-ecrypto/sha3"
	"github.com/abdulrahman305/web3.js/config"
	"github.com/abdulrahman305/web3.js/consts"
	lru "github.com/hashicorp/golang-lru"
)

var ErrInvalidSig = errors.New("invalid transaction v, r, s values")

// senderCache memoizes public-key recovery, which is by far the most
// expensive operation of this package. Keyed by digest plus signature so a
// hit can never cross transactions.
var senderCache, _ = lru.New(4096)

type sigCacheEntry struct {
	pub  []byte
	addr common.Address
}

func keccak256(data []byte) common.Hash {
	d := sha3.NewKeccak256()
	d.Write(data)
	var h common.Hash
	copy(h[:], d.Sum(nil))
	return h
}

// validateSignatureValues checks r and s against the curve order. From
// homestead on, an s in the upper half of the order is rejected so every
// signature has exactly one valid encoding.
func validateSignatureValues(r, s *big.Int, homestead bool) bool {
	if r == nil || s == nil || r.Sign() < 1 || s.Sign() < 1 {
		return false
	}
	if homestead && s.Cmp(secp256k1HalfN) > 0 {
		return false
	}
	return r.Cmp(secp256k1N) < 0 && s.Cmp(secp256k1N) < 0
}

// Sign produces a new, signed transaction carrying v, r, s. The receiver is
// left untouched: the replay-protection view needed for the digest is derived
// locally instead of being toggled on the instance, so repeated Sign calls on
// the same unsigned transaction behave deterministically.
func (tx *Transaction) Sign(privateKey []byte) (*Transaction, error) {
	if len(privateKey) != consts.PrivateKeyLength {
		return nil, tx.keyFormatError("private key must be %d bytes, got %d", consts.PrivateKeyLength, len(privateKey))
	}
	protected := tx.replayProtected()
	digest, err := tx.messageToSign(true, protected)
	if err != nil {
		return nil, tx.signatureError(err, "building message to sign failed")
	}
	sig, err := common.RealCipher.Sign(privateKey, digest)
	if err != nil {
		return nil, tx.signatureError(err, "signing failed")
	}
	r, s, v27 := DecodeSignature(sig)
	if r == nil {
		return nil, tx.signatureError(nil, "unexpected signature length %d", len(sig))
	}
	recid := v27.Uint64() - 27

	var v, chainID *big.Int
	switch tx.Type() {
	case LegacyTxType:
		if protected {
			chainID = math.CopyBigInt(tx.conf.ChainID)
			v = new(big.Int).Mul(bigOrZero(chainID), big.NewInt(2))
			v.Add(v, big.NewInt(35+int64(recid)))
		} else {
			v = new(big.Int).SetUint64(27 + recid)
		}
	default:
		// typed transactions encode the recovery parity directly
		chainID = math.CopyBigInt(tx.conf.ChainID)
		v = new(big.Int).SetUint64(recid)
	}

	signed := tx.inner.copy()
	signed.setSignatureValues(chainID, v, r, s)
	return NewTx(signed, &TxOptions{
		ChainConfig:            tx.conf,
		AllowUnlimitedInitCode: tx.allowUnlimited,
	})
}

// replayProtected is the locally derived signing view: legacy transactions at
// or after the replay-protection fork sign over the chain-id material even
// when the unsigned instance does not carry the capability yet.
func (tx *Transaction) replayProtected() bool {
	if tx.Type() != LegacyTxType {
		return true
	}
	if tx.Supports(ReplayProtectionCapability) {
		return true
	}
	return tx.conf.IsAtLeast(config.SpuriousDragon)
}

// VerifySignature reports whether the signature recovers to a usable public
// key. It never fails: recovery faults and the all-zero key both report
// false.
func (tx *Transaction) VerifySignature() bool {
	pub, _, err := tx.recoverSender()
	if err != nil {
		return false
	}
	for _, b := range pub[1:] {
		if b != 0 {
			return true
		}
	}
	return false
}

// SenderPublicKey recovers the uncompressed public key that produced the
// signature.
func (tx *Transaction) SenderPublicKey() ([]byte, error) {
	pub, _, err := tx.recoverSender()
	return pub, err
}

// SenderAddress derives the 20-byte sender address from the recovered public
// key. Unlike VerifySignature this surfaces recovery failures.
func (tx *Transaction) SenderAddress() (common.Address, error) {
	if f := tx.from.Load(); f != nil {
		return f.(common.Address), nil
	}
	_, addr, err := tx.recoverSender()
	if err != nil {
		return common.Address{}, err
	}
	tx.from.Store(addr)
	return addr, nil
}

func (tx *Transaction) recoverSender() ([]byte, common.Address, error) {
	if !tx.IsSigned() {
		return nil, common.Address{}, tx.signatureError(nil, "transaction is not signed")
	}
	v, r, s := tx.inner.rawSignatureValues()
	parity, protected, err := tx.signatureParity(v)
	if err != nil {
		return nil, common.Address{}, err
	}
	homestead := tx.conf.IsAtLeast(config.Homestead)
	if !validateSignatureValues(r, s, homestead) {
		return nil, common.Address{}, tx.signatureError(ErrInvalidSig, "signature component check failed")
	}
	digest, err := tx.messageToSign(true, protected)
	if err != nil {
		return nil, common.Address{}, tx.signatureError(err, "building message to sign failed")
	}
	sig := encodeSignature(r, s, parity)

	key := string(digest) + string(sig)
	if cached, ok := senderCache.Get(key); ok {
		entry := cached.(*sigCacheEntry)
		return common.CopyBytes(entry.pub), entry.addr, nil
	}

	pub, err := cipher.Ecrecover(digest, sig)
	if err != nil {
		return nil, common.Address{}, tx.signatureError(err, "public key recovery failed")
	}
	if len(pub) != consts.PublicKeyLength || pub[0] != 4 {
		return nil, common.Address{}, tx.signatureError(nil, "invalid public key")
	}
	h := keccak256(pub[1:])
	var addr common.Address
	copy(addr[:], h[12:])
	// the cache keeps its own copy so callers cannot corrupt later hits
	senderCache.Add(key, &sigCacheEntry{pub: common.CopyBytes(pub), addr: addr})
	return pub, addr, nil
}

// signatureParity maps the stored v onto the 0/1 recovery parity, reporting
// whether the signature is replay-protected.
func (tx *Transaction) signatureParity(v *big.Int) (byte, bool, error) {
	if tx.Type() != LegacyTxType {
		if v.BitLen() > 8 || v.Uint64() > 1 {
			return 0, false, tx.signatureError(ErrInvalidSig, "v of a typed transaction must be 0 or 1")
		}
		return byte(v.Uint64()), true, nil
	}
	if isProtectedV(v) {
		chainID := deriveChainID(v)
		if tx.conf.ChainID != nil && chainID != nil && tx.conf.ChainID.Cmp(chainID) != 0 {
			return 0, false, tx.signatureError(nil, "signature is bound to chain %s, configured chain is %s",
				math.BigIntForPrint(chainID), math.BigIntForPrint(tx.conf.ChainID))
		}
		vv := recoverV(v, chainID)
		if vv.Sign() < 0 || vv.BitLen() > 8 || (vv.Uint64() != 27 && vv.Uint64() != 28) {
			return 0, false, tx.signatureError(ErrInvalidSig, "cannot unfold v %s", math.BigIntForPrint(v))
		}
		return byte(vv.Uint64() - 27), true, nil
	}
	if v.BitLen() > 8 {
		return 0, false, tx.signatureError(ErrInvalidSig, "v is out of range")
	}
	u := v.Uint64()
	if u != 27 && u != 28 {
		return 0, false, tx.signatureError(ErrInvalidSig, "v must be 27 or 28 for unprotected transactions")
	}
	return byte(u - 27), false, nil
}

// DecodeSignature splits a raw 65-byte signature into its big.Int components.
// The returned v already carries the +27 offset of unprotected encoding.
func DecodeSignature(sig []byte) (r, s, v *big.Int) {
	if len(sig) != consts.SignatureLength {
		log.Errorf("wrong size for signature: got %d, want %d", len(sig), consts.SignatureLength)
		return nil, nil, nil
	}
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:consts.RecoveryIDOffset])
	v = new(big.Int).SetBytes([]byte{sig[consts.RecoveryIDOffset] + 27})
	return r, s, v
}

func encodeSignature(r, s *big.Int, parity byte) []byte {
	sig := make([]byte, consts.SignatureLength)
	rb, sb := r.Bytes(), s.Bytes()
	copy(sig[32-len(rb):32], rb)
	copy(sig[consts.RecoveryIDOffset-len(sb):consts.RecoveryIDOffset], sb)
	sig[consts.RecoveryIDOffset] = parity
	return sig
}

func isProtectedV(V *big.Int) bool {
	if V.BitLen() <= 8 {
		v := V.Uint64()
		return v != 27 && v != 28 && v != 1 && v != 0
	}
	// anything not 27 or 28 is considered protected
	return true
}

// deriveChainID derives the chain id from the given v parameter
func deriveChainID(v *big.Int) *big.Int {
	if v.BitLen() <= 64 {
		v := v.Uint64()
		if v == 27 || v == 28 {
			return new(big.Int)
		}
		return new(big.Int).SetUint64((v - 35) / 2)
	}
	v = new(big.Int).Sub(v, big.NewInt(35))
	return v.Div(v, big.NewInt(2))
}

var big8 = big.NewInt(8)

func recoverV(v *big.Int, chainID *big.Int) *big.Int {
	chainIDMul := new(big.Int).Mul(chainID, big.NewInt(2))
	vv := new(big.Int).Sub(v, chainIDMul)
	return vv.Sub(vv, big8)
}
