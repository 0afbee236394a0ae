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

// Command comicidx-query is a demo CLI that loads an artifact set from a
// local directory and runs ad-hoc searches against it, the same evaluator
// and ranker the runtime engine uses, without a browser or a server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"

	zmh "github.com/zhongfly/zmh-search"
	"github.com/zhongfly/zmh-search/engine"
	"github.com/zhongfly/zmh-search/internal/obslog"
	"github.com/zhongfly/zmh-search/loader"
	"github.com/zhongfly/zmh-search/query"
)

func main() {
	syncLog := obslog.Init()
	defer syncLog()

	root := &ffcli.Command{
		Name:       "comicidx-query",
		ShortUsage: "comicidx-query <subcommand> [flags]",
		ShortHelp:  "run queries against a local artifact set",
		Subcommands: []*ffcli.Command{
			searchCommand(),
			statsCommand(),
		},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}

	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openEngine(ctx context.Context, dir string) (*engine.Engine, *loader.Loader, error) {
	l := loader.New(&loader.DiskFetcher{Dir: dir}, nil, obslog.Get())
	if err := l.Init(ctx); err != nil {
		return nil, nil, err
	}

	manifest := l.Manifest()
	metaShards := make([]*zmh.MetaShard, len(manifest.Assets.MetaShards))
	for i := range manifest.Assets.MetaShards {
		ms, err := zmh.DecodeMetaShard(l.MetaShard(i))
		if err != nil {
			return nil, nil, err
		}
		metaShards[i] = ms
	}

	return engine.New(metaShards, l.Dict(), l, obslog.Get()), l, nil
}

func searchCommand() *ffcli.Command {
	fs := flag.NewFlagSet("comicidx-query search", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory containing the artifact set")
	page := fs.Int("page", 1, "page number (1-based)")
	size := fs.Int("size", 20, "page size")
	sort := fs.String("sort", string(query.SortRelevance), "relevance | id_desc | id_asc")

	return &ffcli.Command{
		Name:       "search",
		ShortUsage: "search [flags] <query terms>",
		ShortHelp:  "run one search and print matching external ids",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("comicidx-query search: at least one query term is required")
			}
			e, l, err := openEngine(ctx, *dir)
			if err != nil {
				return err
			}

			q := args[0]
			for _, a := range args[1:] {
				q += " " + a
			}

			plan := query.Parse(query.Params{
				Query: q,
				Sort:  query.SortMode(*sort),
				Page:  *page,
				Size:  *size,
			})

			if err := l.EnsureIndexForTokens(ctx, allShardIDs(l)); err != nil {
				return err
			}

			session := engine.NewSession(e, obslog.Get())
			res, err := session.Search(ctx, plan)
			if err != nil {
				return err
			}

			fmt.Printf("requestId=%s total=%d hasMore=%v\n", res.RequestID, res.Total, res.HasMore)
			for _, doc := range res.DocIDs {
				d := e.Document(doc)
				fmt.Printf("%d\t%s\n", d.ID, d.Title)
			}
			return nil
		},
	}
}

func statsCommand() *ffcli.Command {
	fs := flag.NewFlagSet("comicidx-query stats", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory containing the artifact set")

	return &ffcli.Command{
		Name:       "stats",
		ShortUsage: "stats [flags]",
		ShortHelp:  "print manifest summary stats",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			e, l, err := openEngine(ctx, *dir)
			if err != nil {
				return err
			}
			m := l.Manifest()
			fmt.Printf("docs=%d tags=%d metaShards=%d indexShards=%d corpusLoaded=%d\n",
				m.Stats.Count, len(l.Tags()), m.Stats.MetaShardCount, m.Stats.IndexShardCount, e.Count())
			return nil
		},
	}
}

// allShardIDs loads every index shard up front for the demo CLI's one-shot
// search; the UI-facing engine instead loads only the shards a plan's
// tokens actually touch.
func allShardIDs(l *loader.Loader) []int {
	n := l.Manifest().Stats.IndexShardCount
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}
