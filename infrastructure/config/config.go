package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/txtracker/domain/txtracker"
	"github.com/kaspanet/txtracker/domain/txtracker/blocktree"
	"github.com/kaspanet/txtracker/domain/txtracker/finalitystore"
	"github.com/pkg/errors"
)

const (
	appName                  = "txtracker"
	defaultConfigFilename    = "txtracker.conf"
	defaultDataDirname       = "data"
	defaultLogLevel          = "info"
	defaultLogDirname        = "logs"
	defaultLogFilename       = "txtracker.log"
	defaultErrLogFilename    = "txtracker_err.log"
	defaultUnsettledTxTTL    = 0
	defaultFinalizedHistory  = finalitystore.DefaultFinalizedHistorySize
	defaultPrunedHistory     = blocktree.DefaultPrunedHistorySize
	defaultShowNotifications = true
)

var (
	// DefaultHomeDir is the default home directory for txtracker.
	DefaultHomeDir = appDataDir(appName)

	defaultConfigFile = filepath.Join(DefaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(DefaultHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(DefaultHomeDir, defaultLogDirname)
)

// Flags defines the configuration options for txtracker.
//
// See LoadConfig for details on the configuration load process.
type Flags struct {
	ConfigFile              string `short:"C" long:"configfile" description:"Path to configuration file"`
	Scenario                string `short:"s" long:"scenario" description:"Path to the YAML scenario to replay"`
	DataDir                 string `short:"b" long:"datadir" description:"Directory to store the chain data in"`
	LogDir                  string `long:"logdir" description:"Directory to log output."`
	MetricsListen           string `long:"metrics-listen" description:"Serve prometheus metrics on the given interface/port (eg. 127.0.0.1:9090) -- Disabled if empty"`
	UnsettledTransactionTTL uint64 `long:"unsettled-tx-ttl" description:"Evict tracked transactions that did not settle within this many finalized blocks -- 0 never evicts"`
	FinalizedHistorySize    int    `long:"finalized-history" description:"Number of recently finalized blocks remembered for ignoring stale finalizations"`
	PrunedHistorySize       int    `long:"pruned-history" description:"Number of recently pruned blocks remembered for ignoring blocks on abandoned forks"`
	Profile                 string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	ShowNotifications       bool   `long:"show-notifications" description:"Print every settled and done notification to stdout"`
	DebugLevel              string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
}

// Config defines the configuration options for txtracker.
type Config struct {
	*Flags
}

// LogFile returns the path of the main log file
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// ErrLogFile returns the path of the error log file
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir, defaultErrLogFilename)
}

// TrackerConfig returns the tracker's policy configuration
func (cfg *Config) TrackerConfig() *txtracker.Config {
	return &txtracker.Config{
		UnsettledTransactionTTL: cfg.UnsettledTransactionTTL,
		FinalizedHistorySize:    cfg.FinalizedHistorySize,
		PrunedHistorySize:       cfg.PrunedHistorySize,
	}
}

// appDataDir returns the default data directory of appName for the
// current OS
func appDataDir(appName string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "."
	}
	switch runtime.GOOS {
	case "windows", "darwin":
		configDir, err := os.UserConfigDir()
		if err == nil {
			return filepath.Join(configDir, strings.ToUpper(appName[:1])+appName[1:])
		}
	}
	return filepath.Join(homeDir, "."+appName)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = strings.Replace(path, "~", homeDir, 1)
		}
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

func defaultFlags() *Flags {
	return &Flags{
		ConfigFile:              defaultConfigFile,
		DataDir:                 defaultDataDir,
		LogDir:                  defaultLogDir,
		DebugLevel:              defaultLogLevel,
		UnsettledTransactionTTL: defaultUnsettledTxTTL,
		FinalizedHistorySize:    defaultFinalizedHistory,
		PrunedHistorySize:       defaultPrunedHistory,
		ShowNotifications:       defaultShowNotifications,
	}
}

// LoadConfig initializes and parses the config using a config file and
// the given command line arguments.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// Command line options always take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfgFlags := defaultFlags()

	// Pre-parse the command line options to see if an alternative config
	// file was specified. Any errors aside from the help message error can
	// be ignored here since they will be caught by the final parse below.
	preCfg := *cfgFlags
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.IgnoreUnknown)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, err
		}
	}

	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)

	parser := flags.NewParser(cfgFlags, flags.HelpFlag)
	if _, err := os.Stat(preCfg.ConfigFile); err == nil {
		err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing config file %s. %s", preCfg.ConfigFile, usageMessage)
		}
	} else if preCfg.ConfigFile != defaultConfigFile {
		return nil, errors.Errorf("config file %s does not exist", preCfg.ConfigFile)
	}

	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(remainingArgs) > 0 {
		return nil, errors.Errorf("unexpected arguments %s. %s", remainingArgs, usageMessage)
	}

	if cfgFlags.Scenario == "" {
		return nil, errors.Errorf("the --scenario option is required. %s", usageMessage)
	}

	cfg := &Config{Flags: cfgFlags}
	cfg.Scenario = cleanAndExpandPath(cfg.Scenario)
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	// Validate profile port number
	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return nil, errors.Errorf("the profile port must be between 1024 and 65535. %s", usageMessage)
		}
	}

	if cfg.FinalizedHistorySize <= 0 {
		return nil, errors.Errorf("the finalized history size must be positive, got %d. %s",
			cfg.FinalizedHistorySize, usageMessage)
	}
	if cfg.PrunedHistorySize <= 0 {
		return nil, errors.Errorf("the pruned history size must be positive, got %d. %s",
			cfg.PrunedHistorySize, usageMessage)
	}

	return cfg, nil
}
