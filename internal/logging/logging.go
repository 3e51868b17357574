package logging

import (
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

const (
	fileRetention = 7 * 24 * time.Hour
	fileRotation  = 24 * time.Hour
)

// GetModuleLogger returns a logger tagged with the module name.
func GetModuleLogger(name string) *logrus.Entry {
	return logrus.WithField("module", name)
}

// Setup configures the global logger: text on stderr and a daily rotated
// file under dir. An empty dir disables the file output.
func Setup(dir string, level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "parse log level %q", level)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create log dir %s", dir)
	}
	writer, err := rotatelogs.New(
		filepath.Join(dir, "%Y-%m-%d.log"),
		rotatelogs.WithLinkName(filepath.Join(dir, "latest.log")),
		rotatelogs.WithMaxAge(fileRetention),
		rotatelogs.WithRotationTime(fileRotation),
	)
	if err != nil {
		return errors.Wrap(err, "open rotating log file")
	}

	logrus.AddHook(lfshook.NewHook(lfshook.WriterMap{
		logrus.TraceLevel: writer,
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, &logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}))
	return nil
}
