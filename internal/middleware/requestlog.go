package middleware

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    log "github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request through logger.  Server errors
// are logged at error level, client errors at warn, everything else at info.
func RequestLogger(logger *log.Entry) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)

            status := c.Response().Status
            if err != nil && !c.Response().Committed {
                // echo's error handler has not written yet
                status = http.StatusInternalServerError
                var he *echo.HTTPError
                if errors.As(err, &he) {
                    status = he.Code
                }
            }
            entry := logger.WithFields(log.Fields{
                "request_id": c.Response().Header().Get(echo.HeaderXRequestID),
                "method":     c.Request().Method,
                "route":      c.Path(),
                "status":     status,
                "latency":    time.Since(start).String(),
            })
            if staff, ok := c.Get(CtxStaffID).(string); ok {
                entry = entry.WithField("staff_id", staff)
            }
            switch {
            case status >= 500:
                if err != nil {
                    entry = entry.WithError(err)
                }
                entry.Error("request failed")
            case status >= 400:
                entry.Warn("request rejected")
            default:
                entry.Info("request handled")
            }
            return err
        }
    }
}
