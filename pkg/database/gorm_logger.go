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

package database

import (
	"context"
	"errors"
	"time"

	"github.com/go-arbor/arbor/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger routes gorm's SQL logging through the zap-backed log package.
type GormLogger struct {
	conf logger.Config
}

func NewGormLogger(conf logger.Config) *GormLogger {
	return &GormLogger{conf: conf}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.conf.LogLevel = level
	return &newLogger
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.conf.LogLevel >= logger.Info {
		log.Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.conf.LogLevel >= logger.Warn {
		log.Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.conf.LogLevel >= logger.Error {
		log.Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.conf.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.conf.LogLevel >= logger.Error &&
		!(errors.Is(err, gorm.ErrRecordNotFound) && l.conf.IgnoreRecordNotFoundError):
		log.Errorw("sql error", "error", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case elapsed > l.conf.SlowThreshold && l.conf.SlowThreshold != 0 && l.conf.LogLevel >= logger.Warn:
		log.Warnw("slow sql", "elapsed", elapsed, "threshold", l.conf.SlowThreshold, "rows", rows, "sql", sql)
	case l.conf.LogLevel == logger.Info:
		log.Debugw("sql", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
