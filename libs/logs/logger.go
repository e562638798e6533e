package logs

import (
	"os"
	"sync"

	"github.com/stardustagi/HelpDeskGPT/utils"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Log    *zap.Logger
	initMu sync.Mutex
)

// LoggerConfig 对应配置文件中的 [log]
type LoggerConfig struct {
	Filename   string `json:"filename" yaml:"filename"` // 为空时只输出到控制台
	MaxSize    int    `json:"maxsize" yaml:"maxsize"`
	MaxAge     int    `json:"maxage" yaml:"maxage"`
	MaxBackups int    `json:"maxbackups" yaml:"maxbackups"`
	LocalTime  bool   `json:"localtime" yaml:"localtime"`
	Compress   bool   `json:"compress" yaml:"compress"`
	Level      int    `json:"level" yaml:"level"` // zapcore.Level, -1 debug ~ 5 fatal
}

var defaultConfig = LoggerConfig{
	Filename:   "logs/helpdesk.log",
	MaxSize:    60,
	MaxBackups: 5,
	MaxAge:     7,
	Compress:   true,
	Level:      int(zapcore.InfoLevel),
}

// Init 根据 JSON 配置初始化全局 Log，解析失败直接 panic
func Init(logConfigJson []byte) {
	logConfig := defaultConfig
	if len(logConfigJson) > 0 {
		var err error
		if logConfig, err = utils.Bytes2Struct[LoggerConfig](logConfigJson); err != nil {
			panic("Failed to parse log configuration: " + err.Error())
		}
	}
	InitWith(logConfig)
}

func InitWith(logConfig LoggerConfig) {
	initMu.Lock()
	defer initMu.Unlock()
	Log = New(logConfig)
}

func New(logConfig LoggerConfig) *zap.Logger {
	level := zapcore.Level(logConfig.Level)
	if level < zapcore.DebugLevel || level > zapcore.FatalLevel {
		level = zapcore.InfoLevel
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	// 控制台输出
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}
	// 文件输出，lumberjack 负责轮转
	if logConfig.Filename != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logConfig.Filename,
			MaxSize:    logConfig.MaxSize,    // megabytes
			MaxBackups: logConfig.MaxBackups, // 日志文件保留的最大个数
			MaxAge:     logConfig.MaxAge,     // days
			LocalTime:  logConfig.LocalTime,
			Compress:   logConfig.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder, fileWriter, level))
	}

	return zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

func Infof(format string, args ...interface{}) {
	if Log != nil {
		Log.Sugar().Infof(format, args...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Warn(msg, fields...)
	}
}

func Errorf(format string, args ...interface{}) {
	if Log != nil {
		Log.Sugar().Errorf(format, args...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Error(msg, fields...)
	}
}

func Debug(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Debug(msg, fields...)
	}
}

// Sync 退出前刷盘
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func GetLogger(m string) *zap.Logger {
	initMu.Lock()
	if Log == nil {
		Log = New(defaultConfig)
	}
	l := Log
	initMu.Unlock()
	return l.With(zap.String("module", m))
}
