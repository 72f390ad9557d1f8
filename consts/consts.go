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

package consts

const (
	Version = "V1.2.0_txcore" // library version

	// secp256k1 key and signature sizes
	PrivateKeyLength = 32     // raw scalar bytes of a private key
	PublicKeyLength  = 65     // uncompressed public key, 0x04 prefix
	SignatureLength  = 64 + 1 // r(32) || s(32) || recovery id
	RecoveryIDOffset = 64     // position of the recovery id inside a signature

	// granularity of the contract-creation data surcharge
	InitCodeWordSize = 32
)
