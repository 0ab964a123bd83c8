package lncfg

import (
	"os"
	"time"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDialTimeout    = 10 * time.Second
	defaultMaxLogFileSize = 10
	defaultMaxLogFiles    = 3
	defaultLogFilename    = "lnseedd.log"
)

// Config holds every option the bootstrapper cares about: which seeds to
// consult, how to resolve them, an optional single peer to dial directly,
// and logging. Struct tags follow the jessevdk/go-flags convention so a
// Config can be populated from either an INI file or command-line flags
// using the same struct.
type Config struct {
	Seeds []string `long:"seed" description:"DNS seed hostname to query for peer addresses; may be given multiple times. Defaults to the built-in seed list if omitted."`

	UseSystemResolver bool `long:"system-resolver" description:"use the host's configured DNS resolver instead of an injected one"`

	Connect string `long:"connect" description:"bypass DNS bootstrap and target a single peer, in <pubkey-hex>@host:port form"`

	DialTimeout time.Duration `long:"dialtimeout" description:"maximum time to wait for a single handshake attempt"`

	DebugLevel string `long:"debuglevel" description:"logging level for all subsystems: trace, debug, info, warn, error, critical"`

	LogDir string `long:"logdir" description:"directory to place log files in"`

	MaxLogFileSize int `long:"maxlogfilesize" description:"maximum log file size in megabytes before rotation"`

	MaxLogFiles int `long:"maxlogfiles" description:"maximum number of rotated log files to keep"`
}

// DefaultConfig returns a Config populated with the bootstrapper's defaults,
// before any file or command-line overrides are applied.
func DefaultConfig() Config {
	return Config{
		UseSystemResolver: true,
		DialTimeout:       defaultDialTimeout,
		DebugLevel:        "info",
		MaxLogFileSize:    defaultMaxLogFileSize,
		MaxLogFiles:       defaultMaxLogFiles,
	}
}

// LoadConfigFile merges options found in the INI file at path into cfg.
// Options already set on cfg are overwritten only where the file sets them;
// a missing file is not an error, since the config file itself is optional.
func LoadConfigFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	parser := flags.NewParser(cfg, flags.Default)
	err := flags.NewIniParser(parser).ParseFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// DefaultLogFilename is the log file name used under LogDir when none is
// given explicitly by the caller.
const DefaultLogFilename = defaultLogFilename
