package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是一个全局的、配置好的 logrus 实例
// 包初始化时就给一个默认实例，测试和工具命令不调用InitLogger也能直接用
var Log = logrus.New()

// Options 日志初始化参数
type Options struct {
	File  string // 为空则只输出到控制台
	Level string
}

// InitLogger 初始化全局的Logger实例
func InitLogger(opts Options) {
	Log = logrus.New()

	// 1. 设置日志格式为JSON，结构化日志便于后续使用ELK、Loki等工具进行分析
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05", // 自定义时间格式
	})

	// 2. 设置日志输出：控制台 + 按大小滚动的日志文件
	var out io.Writer = os.Stdout
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100, // MB
			MaxBackups: 7,
			MaxAge:     30, // 天
			Compress:   true,
		}
		// io.MultiWriter可以同时向多个Writer输出
		out = io.MultiWriter(os.Stdout, rotating)
	}
	Log.SetOutput(out)

	// 3. 设置日志级别，解析失败就用Info
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}
