/*
Webapi is the executable for the main web server.

It connects to the external resources needed (the SQLite database) and serves
the JSON API: galaxy archive browsing and search, user accounts, sessions,
comments and votes.

Usage:

	webapi [flags]

Flags and configurations are handled automatically by the code in `load-configuration.go`.

Return values (exit codes):

	0
		The program ended successfully (no errors, stopped by signal)

	> 0
		The program ended due to an error

Note that this program will create and initialise the database schema when the
database file doesn't exist yet.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/atrelle/holonet/pkg/auth"
	"github.com/atrelle/holonet/pkg/comments"
	"github.com/atrelle/holonet/pkg/galaxy"
	"github.com/atrelle/holonet/pkg/rest"
	"github.com/atrelle/holonet/pkg/storage/sqlite"
	"github.com/atrelle/holonet/pkg/users"
)

// main is the program entry point. The only purpose of this function is to call run() and set the exit code if there is
// any error
func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error: ", err)
		os.Exit(1)
	}
}

// run executes the program. The body of this function should perform the following steps:
// * reads the configuration
// * creates and configures the logger
// * connects to any external resources (like databases, authenticators, etc.)
// * registers the API handlers
// * starts the principal web server
// * waits for any termination event: SIGTERM signal (UNIX), non-recoverable server error, etc.
// * closes the principal web server
func run() error {
	// a missing .env file isn't an issue; the environment may be set elsewhere
	_ = godotenv.Load()

	// Load Configuration and defaults
	cfg, err := loadConfiguration()
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil
		}
		return err
	}

	// Init logging
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	logger.Infof("application initializing")

	// initialise database before registering handlers for an immediate exit in case of issues
	storage, err := sqlite.New(logger, cfg.DB.Filename)
	if err != nil {
		logger.WithError(err).Error("error initialising storage")
		return fmt.Errorf("error while initialising storage: %w", err)
	}
	defer storage.Close()

	// Start (main) API server
	logger.Info("initializing API server")

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	e, err := rest.New(rest.Config{
		Logger: logger,
	})
	if err != nil {
		logger.WithError(err).Error("error creating the API server instance")
		return fmt.Errorf("creating the API server instance: %w", err)
	}

	e.Use(e.RequestLogger())

	// setup handlers
	var signer = auth.NewSigner(cfg.Session.Secret)
	var authRepository = auth.NewRepository(storage.Connection)
	var usersRepository = users.NewRepository(storage.Connection)
	var galaxyRepository = galaxy.NewRepository(storage.Connection)
	var commentsRepository = comments.NewRepository(storage.Connection)

	users.RegisterHandlers(e, usersRepository, authRepository, signer)
	galaxy.RegisterHandlers(e, galaxyRepository, commentsRepository, authRepository, signer)
	comments.RegisterHandlers(e, commentsRepository, authRepository, signer)

	// Apply CORS policy
	handler := applyCORSHandler(e.Handler())

	// create the API server
	server := http.Server{
		Addr:              cfg.Web.APIHost,
		Handler:           handler,
		ReadTimeout:       cfg.Web.ReadTimeout,
		ReadHeaderTimeout: cfg.Web.ReadTimeout,
		WriteTimeout:      cfg.Web.WriteTimeout,
	}

	// Start the service listening for requests in a separate goroutine
	go func() {
		logger.Infof("API listening on %s", server.Addr)
		serverErrors <- server.ListenAndServe()
		logger.Infof("stopping API server")
	}()

	// Waiting for shutdown signal or POSIX signals
	select {
	case err := <-serverErrors:
		// Non-recoverable server error
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("signal %v received, start shutdown", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and load shed.
		err = server.Shutdown(ctx)
		if err != nil {
			logger.WithError(err).Warning("error during graceful shutdown of HTTP server")
			err = server.Close()
		}

		if err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
