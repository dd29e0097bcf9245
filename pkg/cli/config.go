package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/funvibe/flowtype/internal/config"
)

const (
	envPrefix = "FLOWTYPE"

	configFlagName   = "config"
	dbFlagName       = "db"
	formatFlagName   = "format"
	statsFlagName    = "stats"
	dumpFlagName     = "dump"
	parallelFlagName = "parallel"
	colorFlagName    = "color"
	verboseFlagName  = "verbose"
	logFileFlagName  = "log-file"

	formatConfigKey   = "check.format"
	statsConfigKey    = "check.stats"
	dumpConfigKey     = "check.dump"
	parallelConfigKey = "check.parallel"
	colorConfigKey    = "color"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultFormat        = "text"
	defaultParallel      = 0
	defaultColor         = "auto"
	defaultLogFilename   = ".flowtype.log"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// newConfig returns a viper instance with the defaults and environment
// binding. The config file is read once flags are parsed.
func newConfig() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(formatConfigKey, defaultFormat)
	v.SetDefault(statsConfigKey, false)
	v.SetDefault(dumpConfigKey, false)
	v.SetDefault(parallelConfigKey, defaultParallel)
	v.SetDefault(colorConfigKey, defaultColor)

	v.SetDefault(logFilenameKey, defaultLogFilename)
	v.SetDefault(logLevelKey, "info")
	v.SetDefault(logVerboseKey, false)
	v.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(logCompressKey, defaultLogCompress)
	return v
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values
// feed the flag.
func bindFlagToConfig(v *viper.Viper, flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}
	cobra.CheckErr(v.BindPFlag(key, flag))
}

// loadConfig reads the project file named by --config, or the nearest
// flowtype.yaml above dir. The same file feeds viper and the pipeline.
func (a *app) loadConfig(dir string) error {
	path := a.configPath
	if path == "" {
		found, err := config.FindProject(dir)
		if err != nil {
			return err
		}
		path = found
	}
	if path == "" {
		return nil
	}

	a.v.SetConfigFile(path)
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	proj, err := config.LoadProject(path)
	if err != nil {
		return err
	}
	a.project = proj
	return nil
}

// dbPath is the hierarchy database named by --db or FLOWTYPE_DB, else the
// project's hierarchy_db resolved against the project file.
func (a *app) dbPath() string {
	if p := a.v.GetString(dbFlagName); p != "" {
		return p
	}
	if a.project != nil {
		return a.project.Resolve(a.project.HierarchyDB)
	}
	return ""
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too (-4 is debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}
	return defaultLevel
}

// configureLogger points the logger at a rotating log file. An empty file
// name or "none" discards log output.
func (a *app) configureLogger() {
	logPath := strings.TrimSpace(a.v.GetString(logFilenameKey))
	if logPath == "" || logPath == "none" {
		a.logger = slog.New(slog.DiscardHandler)
		return
	}

	level := parseSlogLevel(a.v.GetString(logLevelKey), slog.LevelInfo)
	if a.v.GetBool(logVerboseKey) {
		level = slog.LevelDebug
	}

	w := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    a.v.GetInt(logMaxSizeKey),
		MaxBackups: a.v.GetInt(logMaxBackupsKey),
		MaxAge:     a.v.GetInt(logMaxAgeKey),
		Compress:   a.v.GetBool(logCompressKey),
	}
	a.closers = append(a.closers, w)

	a.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: level <= slog.LevelDebug,
		Level:     level,
	}))
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
}
