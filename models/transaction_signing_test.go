package models

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/ThinkiumGroup/go-common"
	"github.com/abdulrahman305/web3.js/config"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	sk, err := common.RealCipher.GenerateKey()
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}
	return sk.ToBytes()
}

func expectedSender(t *testing.T, key []byte) common.Address {
	t.Helper()
	sk, err := common.RealCipher.BytesToPriv(key)
	if err != nil {
		t.Fatalf("bad key bytes: %v", err)
	}
	pub := sk.GetPublicKey().ToBytes()
	h := keccak256(pub[1:])
	return common.BytesToAddress(h[12:])
}

func TestSignLegacyProtected(t *testing.T) {
	key := testKey(t)
	tx := mustNewTx(t, &LegacyTx{
		Nonce: 1, GasPrice: big.NewInt(10), Gas: 21000,
		To: testRecipient(), Value: big.NewInt(100),
	}, testOpts(config.Shanghai))

	signed, err := tx.Sign(key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !signed.IsSigned() {
		t.Fatalf("signed tx reports unsigned")
	}

	// chain 1 under replay protection puts v at 2*1+35+recid
	v, _, _ := signed.RawSignatureValues()
	if v.Cmp(big.NewInt(37)) != 0 && v.Cmp(big.NewInt(38)) != 0 {
		t.Errorf("expected v in {37,38}, got %s", v)
	}
	if !signed.Protected() {
		t.Errorf("signature should be replay protected")
	}
	if !signed.VerifySignature() {
		t.Errorf("signature does not verify")
	}

	addr, err := signed.SenderAddress()
	if err != nil {
		t.Fatalf("sender recovery failed: %v", err)
	}
	if want := expectedSender(t, key); addr != want {
		t.Errorf("recovered sender %x, want %x", addr[:], want[:])
	}
	// second lookup serves from the cache and must agree
	again, err := signed.SenderAddress()
	if err != nil || again != addr {
		t.Errorf("cached sender lookup diverged: %x vs %x (%v)", again[:], addr[:], err)
	}
}

func TestSignLegacyPreSpuriousDragon(t *testing.T) {
	key := testKey(t)
	tx := mustNewTx(t, &LegacyTx{Gas: 21000, To: testRecipient()}, testOpts(config.Homestead))

	signed, err := tx.Sign(key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	v, _, _ := signed.RawSignatureValues()
	if v.Cmp(big.NewInt(27)) != 0 && v.Cmp(big.NewInt(28)) != 0 {
		t.Errorf("expected v in {27,28} before replay protection, got %s", v)
	}
	if signed.Protected() {
		t.Errorf("pre-SpuriousDragon signature must not claim protection")
	}
	if signed.ChainID() != nil {
		t.Errorf("unprotected legacy tx has no chain id, got %s", signed.ChainID())
	}
	if !signed.VerifySignature() {
		t.Errorf("signature does not verify")
	}
}

func TestSignTyped(t *testing.T) {
	key := testKey(t)
	tx := mustNewTx(t, &DynamicFeeTx{
		ChainID: big.NewInt(1), Nonce: 7,
		GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(20), Gas: 30000,
		To: testRecipient(),
	}, testOpts(config.London))

	signed, err := tx.Sign(key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	v, _, _ := signed.RawSignatureValues()
	if v.Sign() < 0 || v.Cmp(big.NewInt(1)) > 0 {
		t.Errorf("typed signature carries a parity bit, got v=%s", v)
	}
	if !signed.VerifySignature() {
		t.Errorf("signature does not verify")
	}
	addr, err := signed.SenderAddress()
	if err != nil {
		t.Fatalf("sender recovery failed: %v", err)
	}
	if want := expectedSender(t, key); addr != want {
		t.Errorf("recovered sender %x, want %x", addr[:], want[:])
	}
	pub, err := signed.SenderPublicKey()
	if err != nil || len(pub) == 0 {
		t.Errorf("sender public key: %x, %v", pub, err)
	}
}

func TestSignDoesNotMutateReceiver(t *testing.T) {
	key := testKey(t)
	tx := mustNewTx(t, &LegacyTx{Gas: 21000, To: testRecipient()}, testOpts(config.Shanghai))
	capsBefore := tx.Capabilities()

	if _, err := tx.Sign(key); err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if tx.IsSigned() {
		t.Errorf("signing must not touch the receiver")
	}
	capsAfter := tx.Capabilities()
	if len(capsBefore) != len(capsAfter) {
		t.Fatalf("capabilities changed: %v -> %v", capsBefore, capsAfter)
	}
	for i := range capsBefore {
		if capsBefore[i] != capsAfter[i] {
			t.Errorf("capabilities changed: %v -> %v", capsBefore, capsAfter)
		}
	}
}

func TestSignConsistentAcrossCalls(t *testing.T) {
	key := testKey(t)
	tx := mustNewTx(t, &LegacyTx{Nonce: 5, GasPrice: big.NewInt(3), Gas: 21000, To: testRecipient()}, testOpts(config.Shanghai))

	a, err := tx.Sign(key)
	if err != nil {
		t.Fatalf("first sign failed: %v", err)
	}
	b, err := tx.Sign(key)
	if err != nil {
		t.Fatalf("second sign failed: %v", err)
	}
	av, ar, as := a.RawSignatureValues()
	bv, br, bs := b.RawSignatureValues()
	if av.Cmp(bv) != 0 || ar.Cmp(br) != 0 || as.Cmp(bs) != 0 {
		t.Errorf("signing the same payload twice produced different components:\n(%s,%s,%s)\n(%s,%s,%s)",
			av, ar, as, bv, br, bs)
	}
	if a.Hash() != b.Hash() {
		t.Errorf("deterministic signatures must yield the same hash")
	}
}

func TestSignRejectsMalformedKey(t *testing.T) {
	tx := mustNewTx(t, &LegacyTx{Gas: 21000, To: testRecipient()}, nil)
	_, err := tx.Sign([]byte{1, 2, 3})
	var kerr *KeyFormatError
	if !errors.As(err, &kerr) {
		t.Errorf("expected a KeyFormatError, got %T: %v", err, err)
	}
}

func TestVerifySignatureCorrupt(t *testing.T) {
	key := testKey(t)
	tx := mustNewTx(t, &LegacyTx{
		Nonce: 1, GasPrice: big.NewInt(10), Gas: 21000, To: testRecipient(),
	}, testOpts(config.Shanghai))
	signed, err := tx.Sign(key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	v, r, s := signed.RawSignatureValues()

	rebuild := func(v, r, s *big.Int) *Transaction {
		return mustNewTx(t, &LegacyTx{
			Nonce: 1, GasPrice: big.NewInt(10), Gas: 21000, To: testRecipient(),
			V: v, R: r, S: s,
		}, testOpts(config.Shanghai))
	}

	signer := expectedSender(t, key)

	// recovery cannot tell an in-range tampered component from a genuine
	// signature by someone else; it must either fail or name another sender
	assertNotSigner := func(what string, bad *Transaction) {
		t.Helper()
		addr, err := bad.SenderAddress()
		if err == nil && addr == signer {
			t.Errorf("%s still recovered the original signer", what)
		}
	}
	assertNotSigner("tampered r", rebuild(v, new(big.Int).Add(r, big.NewInt(1)), s))
	assertNotSigner("tampered s", rebuild(v, r, new(big.Int).Add(s, big.NewInt(1))))
	flipped := big.NewInt(37)
	if v.Cmp(flipped) == 0 {
		flipped = big.NewInt(38)
	}
	assertNotSigner("flipped parity", rebuild(flipped, r, s))

	// out-of-range components fail the component check outright
	if bad := rebuild(v, secp256k1N, s); bad.VerifySignature() {
		t.Errorf("r at the curve order must not verify")
	}
	if bad := rebuild(v, r, secp256k1N); bad.VerifySignature() {
		t.Errorf("s at the curve order must not verify")
	}
	if bad := rebuild(v, new(big.Int).Set(maxInteger), s); bad.VerifySignature() {
		t.Errorf("r near the field ceiling must not verify")
	}

	// a v bound to a foreign chain never gets past construction
	_, err = NewTx(&LegacyTx{
		Nonce: 1, GasPrice: big.NewInt(10), Gas: 21000, To: testRecipient(),
		V: big.NewInt(2*99 + 35), R: r, S: s,
	}, testOpts(config.Shanghai))
	var merr *config.ConfigMismatchError
	if !errors.As(err, &merr) {
		t.Errorf("foreign-chain v should be rejected at construction, got %v", err)
	}
}

func TestRecoveryOnUnsignedFails(t *testing.T) {
	tx := mustNewTx(t, &LegacyTx{Gas: 21000, To: testRecipient()}, nil)
	if _, err := tx.SenderAddress(); err == nil {
		t.Errorf("recovery on an unsigned tx should fail")
	} else {
		var serr *SignatureError
		if !errors.As(err, &serr) {
			t.Errorf("expected a SignatureError, got %T: %v", err, err)
		}
	}
	if tx.VerifySignature() {
		t.Errorf("unsigned tx must not verify")
	}
}

func TestHighSRejectedFromHomestead(t *testing.T) {
	highS := new(big.Int).Add(secp256k1HalfN, big.NewInt(1))
	build := func(fork config.Hardfork) *Transaction {
		return mustNewTx(t, &LegacyTx{
			Gas: 21000, To: testRecipient(),
			V: big.NewInt(27), R: big.NewInt(1), S: highS,
		}, testOpts(fork))
	}

	msgs := build(config.Homestead).ValidationMessages()
	found := false
	for _, m := range msgs {
		if m == "s value is above the upper half of the curve order" {
			found = true
		}
	}
	if !found {
		t.Errorf("homestead should flag a high s value, got %v", msgs)
	}

	for _, m := range build(config.Frontier).ValidationMessages() {
		if m == "s value is above the upper half of the curve order" {
			t.Errorf("frontier must not flag a high s value")
		}
	}
}

func TestMessageToSignFollowsSignatureView(t *testing.T) {
	key := testKey(t)
	signed, err := mustNewTx(t, &LegacyTx{
		Nonce: 3, GasPrice: big.NewInt(2), Gas: 21000, To: testRecipient(),
	}, testOpts(config.Homestead)).Sign(key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	v, r, s := signed.RawSignatureValues()

	// the same unprotected signature, now under a replay-protection era
	// config: the reported digest must stay the one the signature covers
	pinned := mustNewTx(t, &LegacyTx{
		Nonce: 3, GasPrice: big.NewInt(2), Gas: 21000, To: testRecipient(),
		V: v, R: r, S: s,
	}, testOpts(config.Shanghai))
	if !pinned.VerifySignature() {
		t.Fatalf("unprotected signature should still verify")
	}
	digest, err := pinned.MessageToSign(true)
	if err != nil {
		t.Fatalf("MessageToSign: %v", err)
	}
	unprotected, err := pinned.messageToSign(true, false)
	if err != nil {
		t.Fatalf("messageToSign: %v", err)
	}
	if !bytes.Equal(digest, unprotected) {
		t.Errorf("digest diverged from the one the signature verifies against")
	}

	// an unsigned instance under the same config signs protected
	fresh := mustNewTx(t, &LegacyTx{
		Nonce: 3, GasPrice: big.NewInt(2), Gas: 21000, To: testRecipient(),
	}, testOpts(config.Shanghai))
	protected, err := fresh.messageToSign(true, true)
	if err != nil {
		t.Fatalf("messageToSign: %v", err)
	}
	freshDigest, err := fresh.MessageToSign(true)
	if err != nil {
		t.Fatalf("MessageToSign: %v", err)
	}
	if !bytes.Equal(freshDigest, protected) {
		t.Errorf("unsigned legacy tx should report the replay-protected digest")
	}
}

func TestMalleatedSignatureGatedOnHomestead(t *testing.T) {
	key := testKey(t)
	signer := expectedSender(t, key)
	signed, err := mustNewTx(t, &LegacyTx{
		Nonce: 9, GasPrice: big.NewInt(4), Gas: 21000, To: testRecipient(),
	}, testOpts(config.Frontier)).Sign(key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	v, r, s := signed.RawSignatureValues()

	// the twin encoding: s' = N-s with the recovery parity flipped
	sTwin := new(big.Int).Sub(secp256k1N, s)
	vTwin := big.NewInt(28)
	if v.Cmp(vTwin) == 0 {
		vTwin = big.NewInt(27)
	}
	rebuild := func(fork config.Hardfork) *Transaction {
		return mustNewTx(t, &LegacyTx{
			Nonce: 9, GasPrice: big.NewInt(4), Gas: 21000, To: testRecipient(),
			V: vTwin, R: r, S: sTwin,
		}, testOpts(fork))
	}

	twin := rebuild(config.Frontier)
	if !twin.VerifySignature() {
		t.Fatalf("the twin encoding is a valid signature before homestead")
	}
	if addr, err := twin.SenderAddress(); err != nil || addr != signer {
		t.Errorf("the twin encoding should recover the same signer: %x, %v", addr[:], err)
	}

	if rebuild(config.Homestead).VerifySignature() {
		t.Errorf("high-s twin must be rejected from homestead on")
	}
}

func TestSenderPublicKeyCopied(t *testing.T) {
	key := testKey(t)
	signed, err := mustNewTx(t, &LegacyTx{
		Nonce: 2, GasPrice: big.NewInt(1), Gas: 21000, To: testRecipient(),
	}, testOpts(config.Shanghai)).Sign(key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	first, err := signed.SenderPublicKey()
	if err != nil {
		t.Fatalf("recovery failed: %v", err)
	}
	want := common.CopyBytes(first)
	first[1] ^= 0xff

	second, err := signed.SenderPublicKey()
	if err != nil {
		t.Fatalf("recovery failed: %v", err)
	}
	if !bytes.Equal(second, want) {
		t.Errorf("mutating a returned key corrupted the recovery cache")
	}
}

func TestMessageToSignStable(t *testing.T) {
	tx := mustNewTx(t, &LegacyTx{Nonce: 2, GasPrice: big.NewInt(5), Gas: 21000, To: testRecipient()}, testOpts(config.Shanghai))
	raw, err := tx.MessageToSign(false)
	if err != nil {
		t.Fatalf("MessageToSign: %v", err)
	}
	digest, err := tx.MessageToSign(true)
	if err != nil {
		t.Fatalf("MessageToSign hashed: %v", err)
	}
	if len(digest) != 32 {
		t.Errorf("digest should be 32 bytes, got %d", len(digest))
	}
	if h := keccak256(raw); !bytes.Equal(h.Slice(), digest) {
		t.Errorf("digest is not the hash of the raw signing material")
	}
}
