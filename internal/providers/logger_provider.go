package providers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"angelupdate/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
	TypeCollector
)

// Logger is the logging facade used across the service. Each log type is
// routed to its own file sink so access, collector and application logs
// can be rotated and shipped independently.
type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

type logFiles struct {
	app       *os.File
	access    *os.File
	collector *os.File
}

type LogProvider struct {
	app       zerolog.Logger
	access    zerolog.Logger
	collector zerolog.Logger
	files     logFiles
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	mode := os.FileMode(conf.Logger.Mode)
	open := func(name string) (*os.File, error) {
		return os.OpenFile(filepath.Join(conf.Logger.Dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, mode)
	}

	appFile, err := open("app.log")
	if err != nil {
		return nil, err
	}
	accessFile, err := open("access.log")
	if err != nil {
		appFile.Close()
		return nil, err
	}
	collectorFile, err := open("collector.log")
	if err != nil {
		appFile.Close()
		accessFile.Close()
		return nil, err
	}

	build := func(f *os.File) zerolog.Logger {
		var w zerolog.LevelWriter = zerolog.MultiLevelWriter(f)
		if conf.Debug {
			console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
			w = zerolog.MultiLevelWriter(f, console)
		}
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}

	return &LogProvider{
		app:       build(appFile),
		access:    build(accessFile),
		collector: build(collectorFile),
		files:     logFiles{app: appFile, access: accessFile, collector: collectorFile},
	}, nil
}

func (l *LogProvider) byType(t TypeEnum) *zerolog.Logger {
	switch t {
	case TypeGet, TypePost:
		return &l.access
	case TypeCollector:
		return &l.collector
	default:
		return &l.app
	}
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.byType(t).Error().Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.byType(t).Warn().Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.byType(t).Info().Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.byType(t).Debug().Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.byType(t).Fatal().Msgf(format, args...)
}

func (l *LogProvider) Close() {
	l.files.app.Close()
	l.files.access.Close()
	l.files.collector.Close()
}
