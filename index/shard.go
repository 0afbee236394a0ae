// Copyright 2017 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

// tokenShard assigns a token key to an index shard by a deterministic
// multiplicative hash, so two builds of the same corpus with the same
// shard count always place a token in the same shard.
func tokenShard(key uint32, shardCount int) int {
	if shardCount <= 1 {
		return 0
	}
	h := uint64(key) * 2654435761
	return int(h % uint64(shardCount))
}

const targetShardBytes = 1 << 20 // 1 MiB

// maxIndexShards is the hard ceiling on shard count: dict.bin stores shard
// ids as a u8.
const maxIndexShards = 256

// defaultIndexShardCount picks a shard count targeting roughly 1 MiB of
// postings bytes per shard, rounded up to a power of two so shard lookup
// can use a mask instead of a division if a caller wants to later.
func defaultIndexShardCount(totalPostingBytes int) int {
	if totalPostingBytes <= 0 {
		return 1
	}
	n := (totalPostingBytes + targetShardBytes - 1) / targetShardBytes
	n = nextPow2(n)
	if n > maxIndexShards {
		n = maxIndexShards
	}
	return n
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
