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

package engine

import (
	"context"
	"sync"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/zhongfly/zmh-search/query"
)

// Session runs searches against an Engine under latest-wins scheduling: an
// in-flight search that observes a newer request abandons its shard-loading
// wait and never emits a result. The UI side of this is message passing;
// Session is the engine-side half, safe to drive from a single goroutine
// per UI command stream.
type Session struct {
	engine *Engine
	logger *zap.Logger

	// OnProgress, when set, receives user-facing progress messages keyed by
	// the request's correlation id. A failed search emits exactly one
	// progress message and no result, so the requester learns of the failure
	// by absence of a result for that id.
	OnProgress func(requestID, stage string)

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// NewSession wraps e for latest-wins scheduling.
func NewSession(e *Engine, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{engine: e, logger: logger}
}

// Search cancels any in-flight search started by a previous call, then runs
// plan. If a newer call to Search arrives before this one finishes, this
// call's context is cancelled; a call waiting on a shard load then returns
// that load's error (wrapping the cancellation) and emits no progress
// message — the caller should treat that as "superseded", not as a
// user-visible failure. A call whose shards are already resident is not
// interrupted and returns its result. Every call is
// tagged with a fresh correlation id so progress and error messages for
// concurrent searches can be told apart in logs.
func (s *Session) Search(ctx context.Context, plan *query.Plan) (*Result, error) {
	requestID := xid.New().String()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.generation++
	gen := s.generation
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.generation == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	s.logger.Debug("search started", zap.String("requestId", requestID), zap.String("cacheKey", plan.CacheKey))

	res, err := s.engine.Search(runCtx, plan)
	if err != nil {
		s.logger.Warn("search failed", zap.String("requestId", requestID), zap.Error(err))
		if s.OnProgress != nil && runCtx.Err() == nil {
			s.OnProgress(requestID, "加载失败: "+err.Error())
		}
		return nil, err
	}
	res.RequestID = requestID
	return res, nil
}
