/*
Package log provides module loggers built on zerolog (https://github.com/rs/zerolog).

Settings come from a toml file named scalelog.toml in the working directory,
from the file named by the SCALE_LOGCONFIG environment variable, or from a
viper instance handed to Configure. Every field is optional.

 # default level for every module: debug/info/warn/error/fatal/panic
 level = "info"

 # console, console_no_color or json
 formatter = "console"

 # print source file and line
 caller = false

 # time stamp layout, see time/format.go
 timefieldformat = "15:04:05"

 # stdout, stderr or a file path
 out = "stderr"

 # per module overrides of level and out
 [registry]
 level = "debug"
*/
package log

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	colorable "github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	confFilePathKey     = "LOGCONFIG"
	confEnvPrefix       = "SCALE"
	defaultConfFileName = "scalelog"
)

var (
	baseLogger  = zerolog.New(os.Stderr)
	baseLevel   = zerolog.InfoLevel
	logInitLock sync.Mutex
	isLogInit   = false
	viperConf   = viper.New()
	modules     []*Logger
)

var errEmptyName = errors.New("empty output name")

// Logger is a zerolog logger tagged with its module name.
type Logger struct {
	*zerolog.Logger
	name  string
	level zerolog.Level
}

func loadConfigFile() {
	viperConf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperConf.SetEnvPrefix(confEnvPrefix)
	viperConf.AutomaticEnv()

	viperConf.SetConfigType("toml")
	viperConf.SetConfigName(defaultConfFileName)
	viperConf.AddConfigPath(".")

	if path := viperConf.GetString(confFilePathKey); path != "" {
		viperConf.SetConfigFile(path)
		baseLogger.Info().Str("file", path).Msg("init logger from configuration file")
	}

	if err := viperConf.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			baseLogger.Error().Err(err).Msg("failed to read logger configuration")
		}
	}
}

func formatOutput(formatter string, out io.Writer) io.Writer {
	switch strings.ToLower(formatter) {
	case "", "json":
		return out
	case "console":
		if f, ok := out.(*os.File); ok {
			out = colorable.NewColorable(f)
		}
		return zerolog.ConsoleWriter{Out: out, TimeFormat: zerolog.TimeFieldFormat}
	case "console_no_color":
		return zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: zerolog.TimeFieldFormat}
	}
	baseLogger.Warn().Str("formatter", formatter).Msg("invalid formatter, use console, console_no_color or json")
	return out
}

func initLog() {
	if format := viperConf.GetString("timefieldformat"); format != "" {
		zerolog.TimeFieldFormat = format
	}

	var out io.Writer = os.Stderr
	if name := viperConf.GetString("out"); name != "" {
		if o, err := getOutput(name); err == nil {
			out = o
		} else {
			baseLogger.Warn().Err(err).Str("out", name).Msg("failed to open log output, using stderr")
		}
	}
	logger := zerolog.New(formatOutput(viperConf.GetString("formatter"), out))

	if viperConf.GetBool("caller") {
		logger = logger.With().Caller().Logger()
	}

	level := zerolog.InfoLevel
	if name := viperConf.GetString("level"); name != "" {
		parsed, err := zerolog.ParseLevel(name)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to parse log level, using info")
		} else {
			level = parsed
		}
	}

	baseLogger = logger.With().Timestamp().Logger().Level(level)
	baseLevel = level
}

func ensureInit() {
	if !isLogInit {
		loadConfigFile()
		initLog()
		isLogInit = true
	}
}

// Configure replaces the logger settings with those of v and rebuilds the
// base logger and every module logger. Call it before other goroutines
// start logging.
func Configure(v *viper.Viper) {
	logInitLock.Lock()
	defer logInitLock.Unlock()

	viperConf = v
	initLog()
	isLogInit = true
	for _, logger := range modules {
		logger.Logger, logger.level = moduleLogger(logger.name)
	}
}

// NewLogger returns a logger whose entries carry module=moduleName. A toml
// table named after the module overrides the base level and output.
func NewLogger(moduleName string) *Logger {
	logInitLock.Lock()
	defer logInitLock.Unlock()
	ensureInit()

	zLogger, zLevel := moduleLogger(moduleName)
	logger := &Logger{Logger: zLogger, name: moduleName, level: zLevel}
	modules = append(modules, logger)
	return logger
}

func moduleLogger(moduleName string) (*zerolog.Logger, zerolog.Level) {
	zLogger := baseLogger.With().Str("module", moduleName).Logger()
	zLevel := baseLevel

	if sub := viperConf.Sub(moduleName); sub != nil {
		if name := sub.GetString("out"); name != "" {
			if out, err := getOutput(name); err == nil {
				zLogger = zLogger.Output(formatOutput(viperConf.GetString("formatter"), out))
			} else {
				baseLogger.Warn().Err(err).Str("out", name).Str("module", moduleName).Msg("failed to open module log output")
			}
		}
		if name := sub.GetString("level"); name != "" {
			parsed, err := zerolog.ParseLevel(name)
			if err != nil {
				parsed = zerolog.InfoLevel
			}
			zLevel = parsed
			zLogger = zLogger.Level(zLevel)
		}
	}

	return &zLogger, zLevel
}

// Default returns the base logger, which has no module name.
func Default() *Logger {
	logInitLock.Lock()
	defer logInitLock.Unlock()
	ensureInit()

	return &Logger{Logger: &baseLogger, level: baseLevel}
}

// getOutput opens stdout, stderr or a file in append mode.
func getOutput(name string) (*os.File, error) {
	switch name {
	case "":
		return nil, errEmptyName
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
}

// IsDebugEnabled lets callers skip building expensive debug output.
func (logger *Logger) IsDebugEnabled() bool {
	return logger.level <= zerolog.DebugLevel
}

// Level returns the logger level name.
func (logger *Logger) Level() string {
	return logger.level.String()
}

// Name returns the module name.
func (logger *Logger) Name() string {
	return logger.name
}
