package logging

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name      string
	inUTC     bool
	level     zap.AtomicLevel
	appenders *appenderSet

	leveled *zap.SugaredLogger
	// forced ignores the level and serves C* calls made with a debug-mode context.
	forced *zap.SugaredLogger
}

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	return newImplSharing(name, level, inUTC, &appenderSet{appenders: appenders})
}

func newImplSharing(name string, level Level, inUTC bool, set *appenderSet) *impl {
	imp := &impl{
		name:      name,
		inUTC:     inUTC,
		level:     zap.NewAtomicLevelAt(level.AsZap()),
		appenders: set,
	}
	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if inUTC {
		opts = append(opts, zap.WithClock(utcClock{}))
	}
	imp.leveled = zap.New(&appenderCore{enabler: imp.level, set: set}, opts...).Named(name).Sugar()
	imp.forced = zap.New(&appenderCore{enabler: zapcore.DebugLevel, set: set}, opts...).Named(name).Sugar()
	return imp
}

func (imp *impl) forCtx(ctx context.Context) *zap.SugaredLogger {
	if IsDebugMode(ctx) {
		return imp.forced
	}
	return imp.leveled
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return newImplSharing(name, imp.GetLevel(), imp.inUTC, imp.appenders)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.SetLevel(level.AsZap())
}

func (imp *impl) GetLevel() Level {
	return levelFromZap(imp.level.Level())
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders.add(appender)
}

func (imp *impl) Sync() error {
	return imp.appenders.sync()
}

func (imp *impl) Debug(args ...interface{}) { imp.leveled.Debug(args...) }

func (imp *impl) Debugf(template string, args ...interface{}) { imp.leveled.Debugf(template, args...) }

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.leveled.Debugw(msg, keysAndValues...)
}

func (imp *impl) Info(args ...interface{}) { imp.leveled.Info(args...) }

func (imp *impl) Infof(template string, args ...interface{}) { imp.leveled.Infof(template, args...) }

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.leveled.Infow(msg, keysAndValues...)
}

func (imp *impl) Warn(args ...interface{}) { imp.leveled.Warn(args...) }

func (imp *impl) Warnf(template string, args ...interface{}) { imp.leveled.Warnf(template, args...) }

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.leveled.Warnw(msg, keysAndValues...)
}

func (imp *impl) Error(args ...interface{}) { imp.leveled.Error(args...) }

func (imp *impl) Errorf(template string, args ...interface{}) { imp.leveled.Errorf(template, args...) }

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.leveled.Errorw(msg, keysAndValues...)
}

func (imp *impl) CDebug(ctx context.Context, args ...interface{}) {
	imp.forCtx(ctx).Debug(args...)
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	imp.forCtx(ctx).Debugf(template, args...)
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.forCtx(ctx).Debugw(msg, keysAndValues...)
}

func (imp *impl) CInfow(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.forCtx(ctx).Infow(msg, keysAndValues...)
}

func (imp *impl) CWarn(ctx context.Context, args ...interface{}) {
	imp.forCtx(ctx).Warn(args...)
}

func (imp *impl) CWarnw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.forCtx(ctx).Warnw(msg, keysAndValues...)
}

func (imp *impl) CErrorw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.forCtx(ctx).Errorw(msg, keysAndValues...)
}

// appenderSet is shared by a logger and all of its subloggers.
type appenderSet struct {
	mu        sync.RWMutex
	appenders []Appender
}

func (s *appenderSet) add(appender Appender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appenders = append(s.appenders, appender)
}

func (s *appenderSet) write(entry zapcore.Entry, fields []zapcore.Field) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var errs error
	for _, appender := range s.appenders {
		errs = multierr.Append(errs, appender.Write(entry, fields))
	}
	return errs
}

func (s *appenderSet) sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var errs error
	for _, appender := range s.appenders {
		errs = multierr.Append(errs, appender.Sync())
	}
	return errs
}

// appenderCore adapts an appenderSet to zapcore.Core.
type appenderCore struct {
	enabler zapcore.LevelEnabler
	set     *appenderSet
	fields  []zapcore.Field
}

func (c *appenderCore) Enabled(level zapcore.Level) bool {
	return c.enabler.Enabled(level)
}

func (c *appenderCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	return &appenderCore{enabler: c.enabler, set: c.set, fields: append(merged, fields...)}
}

func (c *appenderCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *appenderCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if len(c.fields) > 0 {
		fields = append(c.fields[:len(c.fields):len(c.fields)], fields...)
	}
	return c.set.write(entry, fields)
}

func (c *appenderCore) Sync() error {
	return c.set.sync()
}

type utcClock struct{}

func (utcClock) Now() time.Time {
	return time.Now().UTC()
}

func (utcClock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}
