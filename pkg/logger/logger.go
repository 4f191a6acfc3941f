package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger = zap.NewNop()
	once sync.Once
)

// Init 按运行模式初始化全局 logger：release 使用 JSON 输出，其余使用开发模式
func Init(mode string) error {
	var err error
	once.Do(func() {
		var cfg zap.Config
		if mode == "release" {
			cfg = zap.NewProductionConfig()
			cfg.EncoderConfig.TimeKey = "ts"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		} else {
			cfg = zap.NewDevelopmentConfig()
		}
		var l *zap.Logger
		l, err = cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			return
		}
		log = l
	})
	return err
}

// L 返回底层 logger（不跳过调用栈）
func L() *zap.Logger { return log.WithOptions(zap.AddCallerSkip(-1)) }

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { log.Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { log.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }

func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }

// Sync 刷新缓冲
func Sync() error { return log.Sync() }
