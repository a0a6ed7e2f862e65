package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DoyleJ11/cardlobby-backend/internal/engine"
	"github.com/DoyleJ11/cardlobby-backend/internal/logging"
)

const EnvPrefix = "CARDLOBBY"

const (
	minPlayers       = 2
	maxPlayersLimit  = 7
	defaultNATSTopic = "cardlobby.journal"
)

type Config struct {
	Bind      string
	Port      int
	PublicURL string
	Origins   []string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingInterval time.Duration
	OutboxSize   int

	MaxPlayers int
	HandSize   int

	LogFormat string
	Verbose   bool

	DatabaseURL  string
	NATSURL      string
	NATSSubject  string
	JournalQueue int
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.MaxPlayers < minPlayers || c.MaxPlayers > maxPlayersLimit {
		return fmt.Errorf("invalid max players (must be between %d-%d inclusive): %d", minPlayers, maxPlayersLimit, c.MaxPlayers)
	}
	if c.HandSize < 1 {
		return fmt.Errorf("invalid hand size (must be positive): %d", c.HandSize)
	}
	if c.MaxPlayers*c.HandSize > engine.DeckSize {
		return fmt.Errorf("a full lobby of %d players cannot be dealt %d cards each from %d", c.MaxPlayers, c.HandSize, engine.DeckSize)
	}
	if c.OutboxSize < 1 {
		return fmt.Errorf("invalid outbox size (must be positive): %d", c.OutboxSize)
	}
	if c.JournalQueue < 1 {
		return fmt.Errorf("invalid journal queue (must be positive): %d", c.JournalQueue)
	}
	if c.WriteTimeout <= 0 {
		return errors.New("--write-timeout must be positive")
	}
	if c.ReadTimeout < 0 || c.PingInterval < 0 {
		return errors.New("--read-timeout and --ping-interval cannot be negative")
	}
	if c.LogFormat != logging.FormatJSON && c.LogFormat != logging.FormatConsole {
		return fmt.Errorf("invalid log format (must be %s or %s): %q", logging.FormatJSON, logging.FormatConsole, c.LogFormat)
	}
	if c.PublicURL != "" {
		u, err := url.Parse(c.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid public url: %q", c.PublicURL)
		}
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// JoinBase is the URL players are sent to by QR codes. Without --public-url it
// points at this server on localhost.
func (c *Config) JoinBase() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	return "http://" + net.JoinHostPort("localhost", strconv.Itoa(c.Port))
}

// AddFlags registers the server flags on fs and binds each to its
// CARDLOBBY_* environment variable.
func AddFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.SetNormalizeFunc(normalize)

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: CARDLOBBY_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: CARDLOBBY_PORT)")
	fs.StringVar(&cfg.PublicURL, "public-url", "", "externally reachable base url encoded in join QR codes (env: CARDLOBBY_PUBLIC_URL)")
	fs.StringSliceVar(&cfg.Origins, "origin", nil, "extra websocket origin patterns to accept, e.g. localhost:* (env: CARDLOBBY_ORIGIN)")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", 0, "close connections idle for this long, 0 to disable (env: CARDLOBBY_READ_TIMEOUT)")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", 5*time.Second, "timeout for a single websocket write (env: CARDLOBBY_WRITE_TIMEOUT)")
	fs.DurationVar(&cfg.PingInterval, "ping-interval", 30*time.Second, "websocket keepalive interval, 0 to disable (env: CARDLOBBY_PING_INTERVAL)")
	fs.IntVar(&cfg.OutboxSize, "outbox-size", 64, "frames buffered per connection before it is dropped (env: CARDLOBBY_OUTBOX_SIZE)")
	fs.IntVar(&cfg.MaxPlayers, "max-players", 6, "players allowed per lobby (env: CARDLOBBY_MAX_PLAYERS)")
	fs.IntVar(&cfg.HandSize, "hand-size", engine.DefaultHandSize, "cards dealt to each player (env: CARDLOBBY_HAND_SIZE)")
	fs.StringVar(&cfg.LogFormat, "log-format", logging.FormatConsole, "log output format, json or console (env: CARDLOBBY_LOG_FORMAT)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: CARDLOBBY_VERBOSE)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "postgres dsn for the activity journal (env: CARDLOBBY_DATABASE_URL)")
	fs.StringVar(&cfg.NATSURL, "nats-url", "", "nats server to mirror journal entries to (env: CARDLOBBY_NATS_URL)")
	fs.StringVar(&cfg.NATSSubject, "nats-subject", defaultNATSTopic, "subject prefix for mirrored entries (env: CARDLOBBY_NATS_SUBJECT)")
	fs.IntVar(&cfg.JournalQueue, "journal-queue", 256, "journal entries buffered before new ones are dropped (env: CARDLOBBY_JOURNAL_QUEUE)")

	BindEnv(fs, EnvPrefix)
}

// BindEnv lets every flag already defined on fs fall back to PREFIX_NAME in
// the environment. Flags set on the command line win.
func BindEnv(fs *pflag.FlagSet, prefix string) {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if list, ok := val.([]string); ok {
				val = strings.Join(list, ",")
			}
			_ = fs.Set(f.Name, fmt.Sprintf("%v", val))
		}
	})
}

// LoadDotEnv loads variables from the given files into the environment
// without overriding ones already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func normalize(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
