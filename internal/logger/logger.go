package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	NONE
)

// Config controls where log lines go. An empty File logs to stderr only.
type Config struct {
	Level         string
	File          string
	RotationHours int
	MaxAgeDays    int
}

var (
	mu    sync.RWMutex
	level = INFO
	sugar = newSugar(zapcore.AddSync(os.Stderr), INFO)
)

func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn":
		return WARN
	case "error":
		return ERROR
	case "none":
		return NONE
	default:
		return INFO
	}
}

func Init(cfg Config) error {
	lvl := ParseLevel(cfg.Level)
	syncer := zapcore.AddSync(os.Stderr)

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return errors.Wrap(err, "create log directory")
		}
		rotation := cfg.RotationHours
		if rotation <= 0 {
			rotation = 24
		}
		maxAge := cfg.MaxAgeDays
		if maxAge <= 0 {
			maxAge = 7
		}
		w, err := rotatelogs.New(
			cfg.File+".%Y%m%d%H",
			rotatelogs.WithLinkName(cfg.File),
			rotatelogs.WithRotationTime(time.Duration(rotation)*time.Hour),
			rotatelogs.WithMaxAge(time.Duration(maxAge)*24*time.Hour),
		)
		if err != nil {
			return errors.Wrap(err, "open rotating log")
		}
		syncer = zapcore.NewMultiWriteSyncer(syncer, zapcore.AddSync(w))
	}

	set(syncer, lvl)
	return nil
}

// SetOutput sends every log line to w, replacing stderr and any log file.
func SetOutput(w io.Writer, levelStr string) {
	set(zapcore.AddSync(w), ParseLevel(levelStr))
}

func set(syncer zapcore.WriteSyncer, lvl LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	_ = sugar.Sync()
	level = lvl
	sugar = newSugar(syncer, lvl)
}

func newSugar(syncer zapcore.WriteSyncer, lvl LogLevel) *zap.SugaredLogger {
	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		switch lvl {
		case DEBUG:
			return l >= zapcore.DebugLevel
		case INFO:
			return l >= zapcore.InfoLevel
		case WARN:
			return l >= zapcore.WarnLevel
		case ERROR:
			return l >= zapcore.ErrorLevel
		}
		return false
	})

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "time",
		LevelKey:    "level",
		NameKey:     "logger",
		MessageKey:  "msg",
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) { enc.AppendString("[" + l.CapitalString() + "]") },
		EncodeTime:  zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeName:  zapcore.FullNameEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), syncer, enabler)
	return zap.New(core).Named("viterbi").Sugar()
}

func Enabled(l LogLevel) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level <= l && l != NONE
}

func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

func Debug(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Debugf(msg, args...)
}

func Info(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Infof(msg, args...)
}

func Warn(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Warnf(msg, args...)
}

func Error(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Errorf(msg, args...)
}
