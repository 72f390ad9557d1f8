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
	"errors"
	"io/ioutil"
	"math/big"

	"gopkg.in/yaml.v2"
)

// LoadChainConfig reads a custom chain definition from a YAML file.
func LoadChainConfig(path string) (*ChainConfig, error) {
	contents, err := ioutil.ReadFile(path)
	if err != nil {
		logger.Error("reading chain config ", path, " error: ", err)
		return nil, err
	}

	var config ChainConfig
	err = yaml.Unmarshal(contents, &config)
	if err != nil {
		logger.Error("unmarshal chain config ", path, " error: ", err)
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate normalizes a configuration loaded from a file: the numeric chain
// id is lifted into its big.Int form and omitted fields get their defaults.
func (c *ChainConfig) Validate() error {
	if c == nil {
		return errors.New("nil chain configuration")
	}
	if c.ChainIDN == 0 && c.ChainID == nil {
		return errors.New("chain id must be positive")
	}
	if c.ChainID == nil {
		c.ChainID = new(big.Int).SetUint64(c.ChainIDN)
	}
	if c.Name == "" {
		c.Name = "custom"
	}
	if c.Fork == "" {
		logger.Warnf("chain %s declares no hardfork, defaulting to %s", c.Name, DefaultHardfork)
		c.Fork = DefaultHardfork
	}
	if !c.Fork.Known() {
		return errors.New("unknown hardfork: " + string(c.Fork))
	}
	return nil
}
