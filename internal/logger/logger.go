package logger

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// InitLogger initializes the global logger. Production uses structured JSON,
// every other environment a colourised console encoder.
func InitLogger(env, level string) *zap.Logger {
	var logConfig zap.Config
	if env == "production" {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(lvl)

	built, err := logConfig.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	log = built
	log.Info("logger initialized", zap.String("level", lvl.String()), zap.String("env", env))
	return log
}

// GetLogger returns the global logger, falling back to a production logger
// when InitLogger was never called.
func GetLogger() *zap.Logger {
	if log == nil {
		fallback, err := zap.NewProduction()
		if err != nil {
			return zap.NewNop()
		}
		log = fallback
	}
	return log
}

// Middleware logs every request and stores a request-scoped logger in the
// echo context. It expects echo's RequestID middleware to run first.
func Middleware(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = c.Response().Header().Get(echo.HeaderXRequestID)
			}
			ctxLogger := base.With(zap.String("request_id", requestID))
			c.Set(contextKey, ctxLogger)

			err := next(c)
			if err != nil {
				// let echo write the response so the logged status is final
				c.Error(err)
			}

			fields := []zapcore.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			switch {
			case c.Response().Status >= 500:
				if err != nil {
					fields = append(fields, zap.Error(err))
				}
				ctxLogger.Error("http request failed", fields...)
			default:
				ctxLogger.Info("http request completed", fields...)
			}
			return nil
		}
	}
}
