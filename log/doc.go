// Package log provides the leveled logging interface used by the Self-RAG
// pipeline and its graph engine.
//
// Loggers take printf-style arguments and filter by LogLevel. The default
// implementation wraps github.com/kataras/golog; NoOpLogger discards
// everything and is handy in tests.
//
// # Example Usage
//
//	level, err := log.ParseLevel(os.Getenv("SELF_RAG_LOG_LEVEL"))
//	if err != nil {
//		level = log.LogLevelInfo
//	}
//	log.SetLogLevel(level)
//	log.Info("---RETRIEVE---")
//
// A custom golog instance can be wrapped directly:
//
//	glogger := golog.New()
//	glogger.SetPrefix("[worker] ")
//	logger := log.NewGologLogger(glogger)
//	logger.SetLevel(log.LogLevelDebug)
//
// The package-level functions (Debug, Info, Warn, Error) forward to the
// logger installed with SetDefaultLogger.
package log
