// Copyright 2025 Arbor Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICache is the cache store abstraction.
type ICache interface {
	// Get retrieves a cached value
	Get(ctx context.Context, key string) *redis.StringCmd
	// Set stores a value with an expiration
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	// Del removes keys
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	// DelByPattern removes every key matching the glob pattern and returns
	// the number of deleted keys
	DelByPattern(ctx context.Context, pattern string) (int64, error)
	// Ping probes store liveness
	Ping(ctx context.Context) error
	// Pipeline creates a command pipeline
	Pipeline() redis.Pipeliner
	// Expire sets an expiration on an existing key
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}
