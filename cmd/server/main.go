package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/login360/login360/internal/server/api"
	"github.com/login360/login360/internal/server/config"
	"github.com/login360/login360/internal/server/services"
	"github.com/login360/login360/internal/server/storage"
	"github.com/login360/login360/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "login360-server",
	Short: "Login360 credential service",
	Long:  "Account sign-up with e-mail confirmation, password login, SMS second factor and session management",
	Run:   runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the credential service",
	Run:   runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersion("login360-server"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using environment variables")
	}

	log.Infof("%s", version.GetVersion("login360-server"))

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	// all account state lives here for the process lifetime
	store := storage.NewStore()

	mailer := services.NewEmailService(cfg.ResendAPIKey, cfg.MailFrom)
	signupService := services.NewSignupService(store, mailer, cfg)
	sessionService := services.NewSessionService(store, cfg)

	signupHandler := api.NewSignupHandler(signupService)
	sessionHandler := api.NewSessionHandler(sessionService)

	var twoFactorHandler *api.TwoFactorHandler
	if cfg.TwoFactorEnabled() {
		messenger := services.NewSMSService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioPhone)
		twoFactorHandler = api.NewTwoFactorHandler(services.NewTwoFactorService(store, messenger, cfg))
		log.Info("SMS second factor enabled")
	} else {
		log.Info("SMS second factor disabled (no OTP_SEED)")
	}

	router := api.NewRouter(signupHandler, sessionHandler, twoFactorHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.VerifyTimeout > 0 {
		go reapExpiredSignups(signupService)
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}

// reapExpiredSignups periodically drops pending sign-ups whose
// verification window has elapsed. The verify flow keeps its own
// elapsed-time check; this only bounds the table's growth.
func reapExpiredSignups(signupService *services.SignupService) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		signupService.CleanupExpiredPending()
	}
}
