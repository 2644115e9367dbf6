package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/userdir/internal/flagx"
)

var knownFlags = []string{"-s", "-f", "-d", "-r", "-k", "-x", "-t", "-o", "-l", "-e", "-b", "-g", "-u", "-p"}

// parseFlags overlays the flags listed in the package doc. Durations are
// given in whole minutes (-t) and seconds (-o).
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("userdir", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Backend, "s", cfg.Backend, "storage backend")
	fs.StringVar(&cfg.SQLitePath, "f", cfg.SQLitePath, "SQLite database file")
	fs.StringVar(&cfg.PostgresDSN, "d", cfg.PostgresDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.DirectoryKey, "k", cfg.DirectoryKey, "slot key of the directory")
	fs.StringVar(&cfg.SessionSecret, "x", cfg.SessionSecret, "session signing secret")
	sessionTTL := fs.Int("t", int(cfg.SessionTTL.Minutes()), "session lifetime (in minutes)")
	opTimeout := fs.Int("o", int(cfg.OperationTimeout.Seconds()), "storage operation timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "p", cfg.S3SecretKey, "S3 secret key")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	// Only touch durations when the flag was given, so sub-minute values from
	// JSON or the environment survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		case "o":
			cfg.OperationTimeout = time.Duration(*opTimeout) * time.Second
		}
	})
	return nil
}
