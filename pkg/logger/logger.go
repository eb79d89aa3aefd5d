package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log 全局日志实例，供分析引擎侧的包使用
var Log = logrus.New()

// Init 按配置初始化日志级别与输出目标
func Init(levelStr string, filePath string) error {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// 同时输出到控制台和文件（如配置了文件路径）
	writers := []io.Writer{os.Stdout}
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writers = append(writers, file)
	}
	Log.SetOutput(io.MultiWriter(writers...))

	return nil
}
