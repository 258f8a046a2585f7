package badgerdb

import (
	"fmt"
	"strings"

	"github.com/Polkadex-Substrate/go-scale/log"
)

// extendedLog routes badger's own log lines through the module logger.
type extendedLog struct {
	*log.Logger
}

func trim(format string, v ...interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}

func (l *extendedLog) Errorf(format string, v ...interface{}) {
	l.Error().Msg(trim(format, v...))
}

func (l *extendedLog) Warningf(format string, v ...interface{}) {
	l.Warn().Msg(trim(format, v...))
}

func (l *extendedLog) Infof(format string, v ...interface{}) {
	l.Info().Msg(trim(format, v...))
}

func (l *extendedLog) Debugf(format string, v ...interface{}) {
	l.Debug().Msg(trim(format, v...))
}
