package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

var nodeLog bool
var serverLog bool

// InitLog toggles the compute and server logs and sets the log level
// ("" keeps logrus' default)
func InitLog(node, server bool, level string) error {
	nodeLog = node
	serverLog = server
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	return nil
}

func ServerLog(format string, v ...any) {
	if serverLog {
		logrus.WithField("role", "server").Info(fmt.Sprintf(format, v...))
	}
}

func NodeLog(role string, format string, v ...any) {
	if nodeLog {
		logrus.WithField("role", role).Info(fmt.Sprintf(format, v...))
	}
}

func WarnLog(role string, format string, v ...any) {
	logrus.WithField("role", role).Warn(fmt.Sprintf(format, v...))
}
