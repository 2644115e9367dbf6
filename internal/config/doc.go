// Package config loads runtime configuration for the userdir CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed USERDIR_.
//  4. Command-line flags.
//
// Later sources override earlier ones.
//
// Supported flags
//
//	-s string   storage backend: memory, sqlite, postgres, redis, s3
//	-f string   SQLite database file
//	-d string   PostgreSQL DSN
//	-r string   Redis address (host:port)
//	-k string   slot key holding the directory
//	-x string   session signing secret
//	-t int      session lifetime (minutes)
//	-o int      per-operation storage timeout (seconds)
//	-l string   log level: debug, info, warn, error
//	-e string   S3 base endpoint (empty for AWS)
//	-b string   S3 bucket
//	-g string   S3 region
//	-u string   S3 access key
//	-p string   S3 secret key
//
// # JSON schema
//
// Intervals accept strings like "30m" or integer nanoseconds:
//
//	{
//	  "storage_backend": "sqlite",
//	  "sqlite_path": "users.db",
//	  "session_ttl": "30m"
//	}
package config
