package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/dogspotter/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN or "memory://"
//	-t string   Telegram bot token
//	-n int      concurrent update workers
//	-s string   blob backend ("fs" or "s3")
//	-i string   images directory for the fs backend
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m string   detector model
//	-x string   detector base URL
//	-v int      policy minimum volume
//	-r float    policy maximum negative percent
//	-l string   log level
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-w", "-d", "-t", "-n", "-s", "-i", "-u", "-p", "-b", "-g", "-e", "-m", "-x", "-v", "-r", "-l",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP ops address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TelegramToken, "t", config.TelegramToken, "telegram bot token")
	fs.IntVar(&config.Workers, "n", config.Workers, "concurrent update workers")

	fs.StringVar(&config.BlobBackend, "s", config.BlobBackend, "blob backend (fs or s3)")
	fs.StringVar(&config.ImagesDir, "i", config.ImagesDir, "images directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.Model, "m", config.Model, "detector model")
	fs.StringVar(&config.DetectorURL, "x", config.DetectorURL, "detector base URL")
	fs.Int64Var(&config.MinVolume, "v", config.MinVolume, "submissions required before the policy applies")
	fs.Float64Var(&config.MaxNegativePercent, "r", config.MaxNegativePercent, "tolerated percent of photos without a detection")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
