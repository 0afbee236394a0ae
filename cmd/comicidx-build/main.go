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

// Command comicidx-build reads a catalog from a CSV file and writes the
// binary artifact set (meta/dict/index shards, tags, manifest) the runtime
// query engine loads.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/peterbourgon/ff/v3"
	"go.uber.org/zap"

	"github.com/zhongfly/zmh-search/index"
	"github.com/zhongfly/zmh-search/internal/obslog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// unsetShardFlag is the flag default for -meta-shard-docs/-index-shard-count:
// a sentinel distinct from 0 so the builder can tell "flag not passed" (use
// its own default) apart from "flag passed as 0" (disable sharding).
const unsetShardFlag = -1

// shardOpt turns a parsed flag value into the *int Options expects, nil when
// the flag was left at its unset sentinel.
func shardOpt(v int) *int {
	if v == unsetShardFlag {
		return nil
	}
	return &v
}

func run(args []string) int {
	fs := flag.NewFlagSet("comicidx-build", flag.ContinueOnError)
	var (
		in              = fs.String("in", "", "path to the source catalog CSV (required)")
		out             = fs.String("out", "", "output directory for the artifact set (required)")
		clean           = fs.Bool("clean", false, "remove stale artifact files from -out before writing")
		generatedAt     = fs.String("generated-at", "", "RFC3339 timestamp stamped into manifest.generatedAt (default: left blank)")
		metaShardDocs   = fs.Int("meta-shard-docs", unsetShardFlag, "documents per meta shard (0 disables sharding; unset uses the builder's default of 4096)")
		indexShardCount = fs.Int("index-shard-count", unsetShardFlag, "fixed index shard count (0 disables sharding; unset derives a count from total postings size)")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("COMICIDX_BUILD")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "comicidx-build: -in and -out are required")
		fs.Usage()
		return 2
	}

	syncLog := obslog.Init()
	defer syncLog()
	logger := obslog.Get()

	f, err := os.Open(*in)
	if err != nil {
		logger.Error("open input", zap.Error(err))
		return 1
	}
	defer f.Close()

	art, err := index.Build(index.NewCSVSource(f), index.Options{
		MetaShardDocs:   shardOpt(*metaShardDocs),
		IndexShardCount: shardOpt(*indexShardCount),
		GeneratedAt:     *generatedAt,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("build", zap.Error(err))
		return 1
	}

	if err := index.WriteArtifacts(*out, art, *clean); err != nil {
		logger.Error("write artifacts", zap.Error(err))
		return 1
	}

	logger.Info("build summary",
		zap.String("out", *out),
		zap.String("indexBytes", humanize.Bytes(uint64(art.Manifest.Stats.IndexBytes))),
	)
	return 0
}
