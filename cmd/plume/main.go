// cmd/plume/main.go
package main

import (
	"fmt"
	"io"
	stlog "log"
	"os"
	"path/filepath"

	"github.com/plume-editor/plume/internal/app"
	"github.com/plume-editor/plume/internal/config"
	"github.com/plume-editor/plume/internal/logger"
)

var version = "dev"

func main() {
	flags := &config.Flags{}
	args := flags.ParseFlags()

	if flags.Version != nil && *flags.Version {
		fmt.Printf("%s %s\n", config.AppName, version)
		return
	}

	configPath := ""
	if flags.ConfigFilePath != nil {
		configPath = *flags.ConfigFilePath
	}
	cfg, err := config.LoadConfig(configPath, flags)
	if err != nil {
		stlog.Printf("Warning: config load problem: %v", err)
	}
	if cfg == nil {
		stlog.Fatal("could not build configuration")
	}

	logOutput, logFile := openLogOutput(cfg.Logger.LogFilePath)
	if logFile != nil {
		defer logFile.Close()
	}
	logger.Init(cfg.Logger, logOutput)

	filePath := ""
	if len(args) > 0 {
		filePath = args[0]
	}
	logger.Infof("starting %s %s", config.AppName, version)
	if filePath != "" {
		logger.Debugf("opening %s", filePath)
	} else {
		logger.Debugf("no file specified, starting empty")
	}

	plumeApp, err := app.NewApp(filePath, cfg)
	if err != nil {
		logger.Errorf("initialization failed: %v", err)
		stlog.Printf("Error: %v", err)
		os.Exit(1)
	}

	if err := plumeApp.Run(); err != nil {
		logger.Errorf("exited with error: %v", err)
		os.Exit(1)
	}
	logger.Infof("%s finished", config.AppName)
}

// openLogOutput resolves the log destination: "-" means stderr, empty means
// the default file under the user config dir. The file handle is returned
// for deferred closing; it is nil for stderr/discard.
func openLogOutput(path string) (io.Writer, *os.File) {
	if path == "-" {
		return os.Stderr, nil
	}
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return io.Discard, nil
		}
		dir := filepath.Join(configDir, config.ConfigDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return io.Discard, nil
		}
		path = filepath.Join(dir, config.DefaultLogFileName)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		stlog.Printf("Warning: cannot open log file '%s': %v", path, err)
		return io.Discard, nil
	}
	return file, file
}
