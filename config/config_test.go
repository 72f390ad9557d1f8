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
	"io/ioutil"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHardforkOrdering(t *testing.T) {
	c := &ChainConfig{Name: "t", ChainID: big.NewInt(1), Fork: London}
	require.True(t, c.IsAtLeast(Frontier))
	require.True(t, c.IsAtLeast(SpuriousDragon))
	require.True(t, c.IsAtLeast(London))
	require.False(t, c.IsAtLeast(Shanghai))
	require.False(t, c.IsAtLeast(Cancun))

	c.Fork = "bogus"
	require.False(t, c.IsAtLeast(Frontier))
	require.False(t, c.Fork.Known())
	require.True(t, Paris.Known())
}

func TestIsActivated(t *testing.T) {
	c := &ChainConfig{Name: "t", ChainID: big.NewInt(1), Fork: Homestead}
	require.True(t, c.IsActivated(2))
	require.False(t, c.IsActivated(155))

	c.Fork = SpuriousDragon
	require.True(t, c.IsActivated(155))
	require.False(t, c.IsActivated(1559))

	c.Fork = London
	require.True(t, c.IsActivated(1559))
	require.False(t, c.IsActivated(3860))

	// an explicit switch works at any fork
	c.Fork = Homestead
	c.ExtraEIPs = []uint64{3860}
	require.True(t, c.IsActivated(3860))
}

func TestParamEvolution(t *testing.T) {
	at := func(hf Hardfork, name string) uint64 {
		c := &ChainConfig{Name: "t", ChainID: big.NewInt(1), Fork: hf}
		return c.Param(name)
	}
	require.EqualValues(t, 21000, at(Frontier, "txGas"))
	require.EqualValues(t, 21000, at(Cancun, "txGas"))
	require.EqualValues(t, 68, at(Frontier, "txDataNonZeroGas"))
	require.EqualValues(t, 68, at(Petersburg, "txDataNonZeroGas"))
	require.EqualValues(t, 16, at(Istanbul, "txDataNonZeroGas"))
	require.EqualValues(t, 16, at(Shanghai, "txDataNonZeroGas"))
	require.EqualValues(t, 0, at(London, "initCodeWordGas"))
	require.EqualValues(t, 2, at(Shanghai, "initCodeWordGas"))
	require.EqualValues(t, 49152, at(Cancun, "maxInitCodeSize"))
	require.EqualValues(t, 0, at(Cancun, "noSuchParam"))
}

func TestResolveChainConfig(t *testing.T) {
	c, err := ResolveChainConfig(nil, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultChainName, c.Name)
	require.Equal(t, DefaultHardfork, c.Fork)

	c, err = ResolveChainConfig(nil, big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, "goerli", c.Name)
	require.EqualValues(t, 0, c.ChainID.Cmp(big.NewInt(5)))

	c, err = ResolveChainConfig(nil, big.NewInt(777))
	require.NoError(t, err)
	require.Equal(t, "custom", c.Name)
	require.EqualValues(t, 0, c.ChainID.Cmp(big.NewInt(777)))

	mine := &ChainConfig{Name: "mine", ChainIDN: 9, ChainID: big.NewInt(9), Fork: Berlin}
	c, err = ResolveChainConfig(mine, nil)
	require.NoError(t, err)
	require.Equal(t, "mine", c.Name)
	c.Fork = Frontier
	require.Equal(t, Berlin, mine.Fork, "resolution must hand out a copy")

	c, err = ResolveChainConfig(mine, big.NewInt(9))
	require.NoError(t, err)
	require.Equal(t, Berlin, c.Fork)

	_, err = ResolveChainConfig(mine, big.NewInt(10))
	require.Error(t, err)
	require.IsType(t, &ConfigMismatchError{}, err)
}

func TestClone(t *testing.T) {
	orig := &ChainConfig{
		Name: "t", ChainIDN: 3, ChainID: big.NewInt(3),
		Fork: London, ExtraEIPs: []uint64{3860},
	}
	cpy := orig.Clone()
	cpy.ChainID.SetInt64(99)
	cpy.ExtraEIPs[0] = 1
	require.EqualValues(t, 0, orig.ChainID.Cmp(big.NewInt(3)))
	require.EqualValues(t, 3860, orig.ExtraEIPs[0])
}

func TestNewChainConfigUnsupported(t *testing.T) {
	_, err := NewChainConfig(big.NewInt(777))
	require.Error(t, err)
	_, err = NewChainConfig(nil)
	require.Error(t, err)
}

func TestLoadChainConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, ioutil.WriteFile(p, []byte(body), 0644))
		return p
	}

	c, err := LoadChainConfig(write("full.yaml",
		"name: devnet\nchainid: 1337\nhardfork: berlin\nextraEips:\n  - 3860\n"))
	require.NoError(t, err)
	require.Equal(t, "devnet", c.Name)
	require.EqualValues(t, 0, c.ChainID.Cmp(big.NewInt(1337)))
	require.Equal(t, Berlin, c.Fork)
	require.True(t, c.IsActivated(3860))

	c, err = LoadChainConfig(write("minimal.yaml", "chainid: 42\n"))
	require.NoError(t, err)
	require.Equal(t, "custom", c.Name)
	require.Equal(t, DefaultHardfork, c.Fork)

	_, err = LoadChainConfig(write("badfork.yaml", "chainid: 42\nhardfork: futurefork\n"))
	require.Error(t, err)

	_, err = LoadChainConfig(write("nochain.yaml", "name: broken\n"))
	require.Error(t, err)

	_, err = LoadChainConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
