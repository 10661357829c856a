package config

import (
	"flag"

	"github.com/dmitrijs2005/studyvault/internal/flagx"
)

// serverFlags lists every flag parseFlags understands; anything else on the
// command line is left for other flag sets (e.g. -c for the JSON file).
var serverFlags = []string{
	"-a", "-r", "-m", "-d", "-mongo-uri", "-mongo-db", "-s", "-auth",
	"-u", "-p", "-b", "-g", "-e", "-path-style",
	"-ttl", "-store-timeout", "-shutdown-timeout", "-health-interval", "-base-url", "-l",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string              HTTP bind address (e.g., ":8080")
//	-r string              gRPC health bind address (e.g., ":50051")
//	-m string              metadata backend: postgres, mongo, memory
//	-d string              PostgreSQL DSN
//	-mongo-uri string      MongoDB connection URI
//	-mongo-db string       MongoDB database name
//	-s string              JWT HMAC secret key
//	-auth bool             require a bearer token on every API call
//	-u string              S3 root user
//	-p string              S3 root password
//	-b string              S3 bucket name
//	-g string              S3 region
//	-e string              S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-path-style bool       use path-style S3 addressing (MinIO)
//	-ttl duration          upload grant lifetime
//	-store-timeout duration per-call backing store timeout
//	-shutdown-timeout duration
//	-health-interval duration  gRPC health probe period
//	-base-url string       public URL prefix for view/download links
//	-l string              log level
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "r", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.MetadataBackend, "m", config.MetadataBackend, "metadata backend (postgres, mongo, memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "mongo-uri", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "mongo-db", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.BoolVar(&config.RequireAuth, "auth", config.RequireAuth, "require bearer token")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.BoolVar(&config.S3UsePathStyle, "path-style", config.S3UsePathStyle, "S3 path-style addressing")

	fs.DurationVar(&config.GrantTTL, "ttl", config.GrantTTL, "upload grant lifetime")
	fs.DurationVar(&config.StoreTimeout, "store-timeout", config.StoreTimeout, "backing store call timeout")
	fs.DurationVar(&config.ShutdownTimeout, "shutdown-timeout", config.ShutdownTimeout, "graceful shutdown timeout")
	fs.DurationVar(&config.HealthInterval, "health-interval", config.HealthInterval, "metadata store health probe interval")
	fs.StringVar(&config.PublicBaseURL, "base-url", config.PublicBaseURL, "public base URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
