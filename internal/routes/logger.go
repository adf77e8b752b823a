package routes

import (
	"io"

	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"

	"transroute/internal/middleware"
)

// accessLog writes one line per request through logrus, so access logs
// land in the same rotated file as everything else.
func accessLog(w io.Writer) gin.HandlerFunc {
	return ginlogger.SetLogger(
		ginlogger.WithWriter(w),
		ginlogger.WithUTC(true),
		ginlogger.WithSkipPath([]string{"/health"}),
		ginlogger.WithLogger(func(c *gin.Context, l zerolog.Logger) zerolog.Logger {
			return l.With().Str("request_id", c.GetString(middleware.ContextRequestID)).Logger()
		}),
	)
}

func defaultAccessWriter() io.Writer {
	return logrus.StandardLogger().WriterLevel(logrus.InfoLevel)
}
