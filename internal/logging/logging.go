package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Error(msg string, kv ...any)
	Fatal(msg string, kv ...any)
}

// Entry is a copy of an emitted log line kept for the observability API.
type Entry struct {
	Time   time.Time      `json:"time"`
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

type zapLogger struct {
	s *zap.SugaredLogger
}

var (
	bufMu   sync.RWMutex
	recent  = make([]*Entry, 1000)
	nextIdx = 0
	// shared by every logger so PUT /logs/level takes effect everywhere
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// New creates a logger; honors env vars LOG_LEVEL (debug|info|error), LOG_JSON (true|false).
func New(env string) Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(env string, w io.Writer) Logger {
	lvl := os.Getenv("LOG_LEVEL")
	if lvl == "" { lvl = "info" }
	SetLevel(lvl)
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	var enc zapcore.Encoder
	if v := os.Getenv("LOG_JSON"); v == "false" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return &zapLogger{s: zap.New(core).Sugar().With("env", env)}
}

// SetLevel changes the global log level; unknown values fall back to info.
func SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		level.SetLevel(zapcore.FatalLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

func GetLevel() string { return level.Level().String() }

func fieldsFromKV(kv []any) map[string]any {
	if len(kv) == 0 { return nil }
	m := map[string]any{}
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) { break }
		k, ok := kv[i].(string)
		if !ok { continue }
		if err, ok := kv[i+1].(error); ok {
			m[k] = err.Error()
			continue
		}
		m[k] = kv[i+1]
	}
	return m
}

func remember(lvl zapcore.Level, msg string, kv []any) {
	if !level.Enabled(lvl) { return }
	e := &Entry{Time: time.Now(), Level: lvl.String(), Msg: msg, Fields: fieldsFromKV(kv)}
	bufMu.Lock()
	recent[nextIdx] = e
	nextIdx = (nextIdx + 1) % len(recent)
	bufMu.Unlock()
}

func (l *zapLogger) Debug(msg string, kv ...any) { remember(zapcore.DebugLevel, msg, kv); l.s.Debugw(msg, kv...) }
func (l *zapLogger) Info(msg string, kv ...any)  { remember(zapcore.InfoLevel, msg, kv); l.s.Infow(msg, kv...) }
func (l *zapLogger) Error(msg string, kv ...any) { remember(zapcore.ErrorLevel, msg, kv); l.s.Errorw(msg, kv...) }
func (l *zapLogger) Fatal(msg string, kv ...any) { remember(zapcore.FatalLevel, msg, kv); l.s.Fatalw(msg, kv...) }

// Recent returns up to n most recent log entries (newest-first).
func Recent(n int) []*Entry {
	bufMu.RLock(); defer bufMu.RUnlock()
	if n <= 0 || n > len(recent) { n = len(recent) }
	out := make([]*Entry, 0, n)
	i := (nextIdx - 1 + len(recent)) % len(recent)
	for c := 0; c < len(recent) && len(out) < n; c++ {
		if recent[i] != nil { out = append(out, recent[i]) }
		i = (i - 1 + len(recent)) % len(recent)
	}
	return out
}

// Nop discards everything; handy in tests.
func Nop() Logger { return &zapLogger{s: zap.NewNop().Sugar()} }
