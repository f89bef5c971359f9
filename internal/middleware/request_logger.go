package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// handlerがc.Set("error", err)した500の原因
const CtxErrorKey = "error"

// 1リクエスト1行のアクセスログ
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			fields := []zap.Field{
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
			}
			if cause, ok := c.Get(CtxErrorKey).(error); ok {
				fields = append(fields, zap.Error(cause))
			}

			switch {
			case res.Status >= 500:
				logger.Error("request", fields...)
			case res.Status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
			return nil
		}
	}
}
