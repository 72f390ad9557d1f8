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

package config

// Hardfork is a named protocol-rule checkpoint. Later forks may activate or
// tighten rules (high-S rejection, replay protection, init-code limits).
type Hardfork string

const (
	Frontier         Hardfork = "frontier"
	Homestead        Hardfork = "homestead"
	TangerineWhistle Hardfork = "tangerineWhistle"
	SpuriousDragon   Hardfork = "spuriousDragon"
	Byzantium        Hardfork = "byzantium"
	Constantinople   Hardfork = "constantinople"
	Petersburg       Hardfork = "petersburg"
	Istanbul         Hardfork = "istanbul"
	MuirGlacier      Hardfork = "muirGlacier"
	Berlin           Hardfork = "berlin"
	London           Hardfork = "london"
	ArrowGlacier     Hardfork = "arrowGlacier"
	GrayGlacier      Hardfork = "grayGlacier"
	Paris            Hardfork = "paris"
	Shanghai         Hardfork = "shanghai"
	Cancun           Hardfork = "cancun"
)

// hardforkOrder lists all known forks from oldest to newest. The position in
// this slice is the only ordering the library relies on.
var hardforkOrder = []Hardfork{
	Frontier,
	Homestead,
	TangerineWhistle,
	SpuriousDragon,
	Byzantium,
	Constantinople,
	Petersburg,
	Istanbul,
	MuirGlacier,
	Berlin,
	London,
	ArrowGlacier,
	GrayGlacier,
	Paris,
	Shanghai,
	Cancun,
}

var hardforkIndex = func() map[Hardfork]int {
	m := make(map[Hardfork]int, len(hardforkOrder))
	for i, hf := range hardforkOrder {
		m[hf] = i
	}
	return m
}()

// eipActivations maps an EIP number to the hardfork that switched it on.
var eipActivations = map[uint64]Hardfork{
	2:    Homestead,        // signature malleability: high-S rejected
	7:    Homestead,        // DELEGATECALL
	150:  TangerineWhistle, // gas cost changes for IO-heavy operations
	155:  SpuriousDragon,   // replay protection via chain-id bound v
	158:  SpuriousDragon,   // state clearing
	2028: Istanbul,         // calldata gas reduction
	2718: Berlin,           // typed transaction envelope
	2929: Berlin,           // gas cost increases for state access
	2930: Berlin,           // optional access lists
	1559: London,           // fee market
	3198: London,           // BASEFEE opcode
	3529: London,           // refund reduction
	3860: Shanghai,         // init-code size limit and word cost
	1153: Cancun,           // transient storage
	4844: Cancun,           // shard blob transactions
}

func (hf Hardfork) Known() bool {
	_, ok := hardforkIndex[hf]
	return ok
}

func (hf Hardfork) String() string {
	return string(hf)
}

// gasParams are the named protocol parameters introduced (or changed) by each
// hardfork. Lookups walk the ordered fork list up to the configured fork with
// the latest value winning, so a fork only lists what it changes.
var gasParams = map[Hardfork]map[string]uint64{
	Frontier: {
		"txGas":            21000, // flat per-transaction fee
		"txCreationGas":    32000, // surcharge for contract creation
		"txDataZeroGas":    4,     // per zero byte of data
		"txDataNonZeroGas": 68,    // per non-zero byte of data
	},
	Istanbul: {
		"txDataNonZeroGas": 16,
	},
	Shanghai: {
		"initCodeWordGas": 2,     // per 32-byte word of init code
		"maxInitCodeSize": 49152, // upper bound on creation payload
	},
}
