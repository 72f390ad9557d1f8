// Copyright 2020 Thinkium
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package models

import "math/big"

const (
	LegacyTxType     = byte(0x00)
	AccessListTxType = byte(0x01)
	DynamicFeeTxType = byte(0x02)
)

// Capability is a protocol feature engaged on a transaction instance. It is a
// projection of the transaction type, the signature shape and the configured
// hardfork, and is never serialized. It is distinct from the type tag: access
// lists, for example, are also engaged on fee-market transactions.
type Capability uint16

const (
	ReplayProtectionCapability Capability = 155  // chain-id bound signature encoding
	FeeMarketCapability        Capability = 1559 // tip/fee-cap pricing
	TypedTransactionCapability Capability = 2718 // typed envelope encoding
	AccessListsCapability      Capability = 2930 // declared state access
)

func (c Capability) String() string {
	switch c {
	case ReplayProtectionCapability:
		return "replay-protection"
	case FeeMarketCapability:
		return "fee-market"
	case TypedTransactionCapability:
		return "typed-transaction"
	case AccessListsCapability:
		return "access-lists"
	}
	return "unknown"
}

var (
	// maxInteger is the 256 bit field ceiling, 2^256-1.
	maxInteger = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	// secp256k1N is the order of the curve, secp256k1HalfN the malleability
	// boundary for s enforced at or after homestead.
	secp256k1N, _  = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)
