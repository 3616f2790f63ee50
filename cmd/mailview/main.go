package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"mailview"
	"mailview/cache"
	"mailview/config"
	"mailview/pkg/mailer"
)

var (
	// CLI flags
	portFlag           int
	dbFilenameFlag     string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on")
	flag.StringVar(&dbFilenameFlag, "db", "cache.db", "Cache DB file name (use 'memory' for in-memory cache)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	// .env is optional, the environment itself takes precedence
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Could not load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	var provider cache.Provider
	if dbFilenameFlag == "memory" {
		provider = cache.NewMemCache()
	} else {
		sqlite, err := cache.NewSQLiteCache(dbFilenameFlag)
		if err != nil {
			log.Fatal().Err(err).Str("db", dbFilenameFlag).Msg("Could not open cache db")
		}
		provider = sqlite
	}
	go cache.Janitor(provider, time.Minute)

	var mailerOpts []mailer.Option
	if cfg.MailerBaseURL != "" {
		mailerOpts = append(mailerOpts, mailer.WithBaseURL(cfg.MailerBaseURL))
	}

	server := mailview.New(mailview.Config{
		Cache:         provider,
		Mailer:        mailer.New(mailerOpts...),
		APIKey:        cfg.MailerAPIKey,
		SigningSecret: cfg.SigningSecret,
		Logger:        &log.Logger,
	})
	handler := hlog.NewHandler(log.Logger)(server.Router())

	log.Info().Msgf("Serving signed email links on port %d", portFlag)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", portFlag), handler); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
