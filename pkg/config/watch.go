package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/marmos91/sfmp/internal/logger"
)

// WatchLogLevel watches the configuration file at path and applies changes
// to logging.level without a restart. Other settings are read at start-up
// only. It returns immediately; the watch lasts for the process lifetime.
func WatchLogLevel(path string) {
	if path == "" {
		return
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		logger.Warn("Config watch disabled", "path", path, "error", err)
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := strings.ToUpper(v.GetString("logging.level"))
		if level == "" || logger.GetLevel().String() == level {
			return
		}
		if _, ok := logger.ParseLevel(level); !ok {
			logger.Warn("Ignoring invalid log level from config", "level", level)
			return
		}
		logger.SetLevel(level)
		logger.Info("Log level changed", "level", level, "path", e.Name)
	})
	v.WatchConfig()
}
