package log

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UserIDKey is the fiber local holding the authenticated subject.
const UserIDKey = "user_id"

var std = newLogger(os.Stdout, logrus.InfoLevel)

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "action",
		},
	})
	return l
}

// Configure replaces the sink and level. An unknown level falls back to info.
func Configure(out io.Writer, level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	std.SetOutput(out)
	std.SetLevel(lvl)
}

func Logger() *logrus.Logger { return std }

type sink struct{}

func (sink) Write(p []byte) (int, error) { return std.Out.Write(p) }

// Writer is the raw sink, for middleware that formats its own lines. It follows
// later calls to Configure.
func Writer() io.Writer { return sink{} }

func requestFields(c *fiber.Ctx) logrus.Fields {
	f := logrus.Fields{}
	if c == nil {
		return f
	}
	f["ip"] = c.IP()
	f["method"] = c.Method()
	f["path"] = c.Path()
	if status := c.Response().StatusCode(); status != 0 {
		f["status"] = status
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		f["req_id"] = rid
	}
	if uid, ok := c.Locals(UserIDKey).(string); ok && uid != "" {
		f["user_id"] = uid
	}
	return f
}

func write(level logrus.Level, category string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	f := requestFields(c)
	if category != "" {
		f["category"] = category
	}
	if len(fields) > 0 {
		f["fields"] = fields
	}
	e := std.WithFields(f)
	if err != nil {
		e = e.WithError(err)
	}
	e.Log(level, action)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.InfoLevel, "", c, action, nil, fields)
}

// Audit records a successful security-relevant action.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.InfoLevel, "audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.WarnLevel, "security", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(logrus.ErrorLevel, "", c, action, err, fields)
}
