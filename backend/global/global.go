package global

import "github.com/rs/zerolog"

// Logger is the process logger. Its level follows zerolog.SetGlobalLevel so
// it can change while handlers are logging.
var Logger zerolog.Logger
