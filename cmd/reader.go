package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/di"
	"github.com/matheuskafuri/headlines/internal/imagecache"
	"github.com/matheuskafuri/headlines/internal/logging"
)

// openReader loads the config and wires a reader. Interactive runs log to
// the state directory because the TUI owns the terminal.
func openReader(interactive bool, notifier imagecache.Notifier) (*di.Reader, func(), error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}

	var log zerolog.Logger
	closeLog := func() {}
	if interactive {
		l, f, err := logging.OpenFile(config.LogPath(), level)
		if err != nil {
			return nil, nil, err
		}
		log = l
		closeLog = func() { f.Close() }
	} else {
		log = logging.New(os.Stderr, level)
	}

	r, cleanup, err := di.InitializeReader(cfg, di.IndexPath(mediaIndexPath()), log, notifier)
	if err != nil {
		closeLog()
		return nil, nil, fmt.Errorf("initializing reader: %w", err)
	}
	return r, func() {
		cleanup()
		closeLog()
	}, nil
}

func mediaIndexPath() string {
	if flagMediaIndex != "" {
		return flagMediaIndex
	}
	return config.MediaIndexPath()
}
