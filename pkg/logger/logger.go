package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log stays a no-op logger until InitLogger runs, so packages can log from tests.
var Log = zap.NewNop()

// InitLogger builds the process logger. Release mode logs JSON; anything
// else logs colored console lines. An empty level keeps the mode's default.
func InitLogger(mode, level string) {
	var config zap.Config
	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			os.Stderr.WriteString("invalid log level " + level + "\n")
			os.Exit(1)
		}
		config.Level = lvl
	}
	config.OutputPaths = []string{"stdout"}

	built, err := config.Build(zap.Fields(zap.String("service", "tonk")))
	if err != nil {
		os.Exit(1)
	}
	Log = built
	zap.ReplaceGlobals(Log)
}

// Game returns a child logger carrying the game id.
func Game(gameID string) *zap.Logger {
	return Log.With(zap.String("gameID", gameID))
}
