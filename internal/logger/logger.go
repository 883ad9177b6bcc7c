package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDirName  = "logs"
	defaultLogFilename = "orderdesk.log"
)

// Options 日志输出配置，零值字段使用默认滚动参数（100MB / 7 份 / 30 天）
type Options struct {
	Level      string
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Stdout     bool
}

var global atomic.Pointer[zap.Logger]

// Init 创建并替换全局日志
func Init(mode string, options Options) *zap.Logger {
	log := New(mode, options)
	global.Store(log)
	zap.ReplaceGlobals(log)
	return log
}

// New debug 模式输出彩色控制台，其余模式写 JSON 滚动文件
func New(mode string, options Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")
	level := resolveLevel(options.Level, debug)
	enc := encoderConfig()

	var core zapcore.Core
	switch {
	case debug:
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stdout), level)
	default:
		core = fileCore(options, zapcore.NewJSONEncoder(enc), level)
	}
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.Fields(zap.String("app", "orderdesk")))
}

func fileCore(options Options, enc zapcore.Encoder, level zapcore.LevelEnabler) zapcore.Core {
	path, err := resolveLogFilePath(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file unavailable, writing to stdout: %v\n", err)
		return zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)
	}
	rotating := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    orDefault(options.MaxSizeMB, 100),
		MaxBackups: orDefault(options.MaxBackups, 7),
		MaxAge:     orDefault(options.MaxAgeDays, 30),
		Compress:   options.Compress,
	})
	core := zapcore.NewCore(enc, rotating, level)
	if options.Stdout {
		core = zapcore.NewTee(core, zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stdout), level))
	}
	return core
}

// Z 未初始化时返回控制台 info 级别日志
func Z() *zap.Logger {
	if log := global.Load(); log != nil {
		return log
	}
	fallback := New("debug", Options{})
	fallback = fallback.WithOptions(zap.IncreaseLevel(zap.InfoLevel))
	if global.CompareAndSwap(nil, fallback) {
		return fallback
	}
	return global.Load()
}

func S() *zap.SugaredLogger {
	return Z().Sugar()
}

// SW 附带键值字段，如 request_id / order_id
func SW(kv ...interface{}) *zap.SugaredLogger {
	return S().With(kv...)
}

func Debugw(message string, kv ...interface{}) { S().Debugw(message, kv...) }
func Infow(message string, kv ...interface{}) { S().Infow(message, kv...) }
func Warnw(message string, kv ...interface{}) { S().Warnw(message, kv...) }
func Errorw(message string, kv ...interface{}) { S().Errorw(message, kv...) }

func Sync() {
	if log := global.Load(); log != nil {
		_ = log.Sync()
	}
}

func resolveLevel(raw string, debug bool) zap.AtomicLevel {
	if debug {
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(raw))); err == nil && strings.TrimSpace(raw) != "" {
		level = parsed
	}
	return zap.NewAtomicLevelAt(level)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "event"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

// resolveLogFilePath 目录为空时落在工作目录下的 logs/，并预先创建文件
func resolveLogFilePath(options Options) (string, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir failed: %w", err)
		}
		dir = filepath.Join(wd, defaultLogDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir failed: %w", err)
	}
	name := strings.TrimSpace(options.Filename)
	if name == "" {
		name = defaultLogFilename
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file failed: %w", err)
	}
	return path, f.Close()
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
