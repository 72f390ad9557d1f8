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

import (
	"fmt"
	"math/big"

	"github.com/ThinkiumGroup/go-common/math"
	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"
)

const (
	DefaultChainName = "mainnet"
	DefaultHardfork  = Shanghai
)

var logger logrus.FieldLogger = logrus.StandardLogger().WithField("module", "chaincfg")

// ChainConfig scopes protocol rules to one chain at one hardfork. A
// transaction owns its own copy, so instances must never be shared between
// transactions without Clone.
type ChainConfig struct {
	Name      string   `yaml:"name" json:"name"`
	ChainIDN  uint64   `yaml:"chainid" json:"chainid"`   // numeric form used by config files
	Fork      Hardfork `yaml:"hardfork" json:"hardfork"` // active hardfork
	ExtraEIPs []uint64 `yaml:"extraEips" json:"extraEips,omitempty"`

	ChainID *big.Int `yaml:"-" json:"-"` // converted from ChainIDN in Validate()
}

// ConfigMismatchError reports a chain id that conflicts with the chain id of
// an explicitly provided configuration.
type ConfigMismatchError struct {
	Provided  *big.Int
	Requested *big.Int
}

func (e *ConfigMismatchError) Error() string {
	return fmt.Sprintf("chain id mismatch: configuration is scoped to chain %s, requested chain %s",
		math.BigIntForPrint(e.Provided), math.BigIntForPrint(e.Requested))
}

var supportedChains = map[uint64]*ChainConfig{
	1:        {Name: "mainnet", ChainIDN: 1, Fork: DefaultHardfork, ChainID: big.NewInt(1)},
	5:        {Name: "goerli", ChainIDN: 5, Fork: DefaultHardfork, ChainID: big.NewInt(5)},
	17000:    {Name: "holesky", ChainIDN: 17000, Fork: DefaultHardfork, ChainID: big.NewInt(17000)},
	11155111: {Name: "sepolia", ChainIDN: 11155111, Fork: DefaultHardfork, ChainID: big.NewInt(11155111)},
}

// NewChainConfig returns a copy of the built-in configuration for a supported
// chain id.
func NewChainConfig(chainID *big.Int) (*ChainConfig, error) {
	if chainID == nil || !chainID.IsUint64() {
		return nil, fmt.Errorf("unusable chain id: %s", math.BigIntForPrint(chainID))
	}
	c, ok := supportedChains[chainID.Uint64()]
	if !ok {
		return nil, fmt.Errorf("unsupported chain id: %d", chainID.Uint64())
	}
	return c.Clone(), nil
}

// CustomChainConfig builds a configuration for an unrecognized chain, seeded
// with the default hardfork.
func CustomChainConfig(chainID *big.Int) *ChainConfig {
	c := &ChainConfig{
		Name:    "custom",
		Fork:    DefaultHardfork,
		ChainID: math.CopyBigInt(chainID),
	}
	if chainID != nil && chainID.IsUint64() {
		c.ChainIDN = chainID.Uint64()
	}
	return c
}

// DefaultChainConfig is the configuration used when neither a chain id nor an
// explicit configuration is supplied.
func DefaultChainConfig() *ChainConfig {
	return supportedChains[1].Clone()
}

// ResolveChainConfig derives the configuration a transaction will own.
//
// With both a configuration and a chain id the two must agree. With only a
// chain id a built-in configuration is used when the chain is recognized,
// otherwise a custom one is derived. With only a configuration the caller's
// instance is deep-copied so the transaction cannot alias it. With neither,
// the default chain at the default hardfork is used. A provided configuration
// is always treated as a complete, well-typed value.
func ResolveChainConfig(provided *ChainConfig, chainID *big.Int) (*ChainConfig, error) {
	if chainID != nil {
		if provided != nil {
			if provided.ChainID == nil || provided.ChainID.Cmp(chainID) != 0 {
				return nil, &ConfigMismatchError{Provided: provided.ChainID, Requested: chainID}
			}
			return provided.Clone(), nil
		}
		if c, err := NewChainConfig(chainID); err == nil {
			return c, nil
		}
		logger.Warnf("chain %s not in the supported table, deriving a custom configuration", math.BigIntForPrint(chainID))
		return CustomChainConfig(chainID), nil
	}
	if provided != nil {
		return provided.Clone(), nil
	}
	return DefaultChainConfig(), nil
}

// Clone returns a deep copy. big.Int hides its limbs from reflection, so the
// chain id is copied separately.
func (c *ChainConfig) Clone() *ChainConfig {
	cpy := new(ChainConfig)
	if err := copier.CopyWithOption(cpy, c, copier.Option{DeepCopy: true}); err != nil {
		logger.Errorf("clone of chain configuration %s failed: %v", c.Name, err)
		*cpy = *c
	}
	cpy.ChainID = math.CopyBigInt(c.ChainID)
	return cpy
}

// IsAtLeast reports whether the configured hardfork is hf or later.
func (c *ChainConfig) IsAtLeast(hf Hardfork) bool {
	mine, ok := hardforkIndex[c.Fork]
	if !ok {
		return false
	}
	want, ok := hardforkIndex[hf]
	if !ok {
		return false
	}
	return mine >= want
}

// IsActivated reports whether the identified EIP is in effect under the
// configured hardfork or has been switched on explicitly.
func (c *ChainConfig) IsActivated(eip uint64) bool {
	if hf, ok := eipActivations[eip]; ok && c.IsAtLeast(hf) {
		return true
	}
	for _, e := range c.ExtraEIPs {
		if e == eip {
			return true
		}
	}
	return false
}

// Param resolves a named protocol parameter through the ordered fork tables.
// Unknown names contribute zero rather than failing.
func (c *ChainConfig) Param(name string) uint64 {
	end, ok := hardforkIndex[c.Fork]
	if !ok {
		end = 0
	}
	var v uint64
	for i := 0; i <= end; i++ {
		if table, ok := gasParams[hardforkOrder[i]]; ok {
			if x, ok := table[name]; ok {
				v = x
			}
		}
	}
	return v
}

func (c *ChainConfig) String() string {
	if c == nil {
		return "Chain<nil>"
	}
	return fmt.Sprintf("Chain{%s id:%s fork:%s}", c.Name, math.BigIntForPrint(c.ChainID), c.Fork)
}
