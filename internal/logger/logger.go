package logger

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds a zap logger writing to stdout and the given file. The file
// handle is returned so the request-logging middleware can share it.
func Init(logPath string) (*zap.SugaredLogger, *os.File, error) {
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout), zapcore.AddSync(logFile)),
		zap.InfoLevel,
	)

	return zap.New(core, zap.AddCaller()).Sugar(), logFile, nil
}

// Nop returns a discarding logger for tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// FiberMiddleware returns Fiber's request logger writing to stdout and the
// shared log file.
func FiberMiddleware(logFile *os.File) fiber.Handler {
	return fiberlogger.New(fiberlogger.Config{
		Output:     io.MultiWriter(os.Stdout, logFile),
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	})
}
