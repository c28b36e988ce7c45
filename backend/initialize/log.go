package initialize

import (
	"os"
	"strings"
	"time"

	"filepower/backend/global"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	// console writer to stdout until the config is loaded
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	global.Logger = log.Output(cw)
}

// SetLogLevel applies a level name from the config. Unknown names fall back
// to info. Safe to call from the config watcher.
func SetLogLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return lvl
}
