// File: servora/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servora/config"
	"servora/database"
	bookingRepoPkg "servora/database/repository/booking"
	invoiceRepoPkg "servora/database/repository/invoice"
	serviceRepoPkg "servora/database/repository/service"
	settingsRepoPkg "servora/database/repository/settings"
	userRepoPkg "servora/database/repository/user"
	"servora/handlers"
	"servora/middleware"
	"servora/routes"
	"servora/services/booking"
	"servora/services/discovery"
	"servora/services/listing"
	"servora/services/notification"
	"servora/services/payment"
	"servora/services/performance"
	"servora/services/user"
	"servora/services/violation"
	"servora/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	serviceRepo := serviceRepoPkg.NewMongoServiceRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	paymentRepo := bookingRepoPkg.NewMongoPaymentRepo()
	invoiceRepo := invoiceRepoPkg.NewMongoInvoiceRepo()
	settingsRepo := settingsRepoPkg.NewMongoSettingsRepo()

	// collaborators.
	clock := utils.RealClock{}
	gateway := payment.NewStripeGateway(logger)
	notifier := &notification.LogNotificationService{Logger: logger}
	mailer := &notification.LogEmailSender{Logger: logger}

	// services.
	locationService := user.NewLocationService(userRepo, logger)

	scorer := &performance.Scorer{
		Users:  userRepo,
		Clock:  clock,
		Logger: logger,
	}

	discoveryEngine := &discovery.Engine{
		Services: serviceRepo,
		Users:    userRepo,
		Settings: settingsRepo,
		Sweeper:  locationService,
		Logger:   logger,
	}

	bookingService := &booking.Service{
		Bookings:    bookingRepo,
		Payments:    paymentRepo,
		Users:       userRepo,
		Settings:    settingsRepo,
		Gateway:     gateway,
		Notifier:    notifier,
		Email:       mailer,
		Performance: scorer,
		Clock:       clock,
		Logger:      logger,
	}

	violationEngine := &violation.Engine{
		Invoices:    invoiceRepo,
		Bookings:    bookingRepo,
		Users:       userRepo,
		Settings:    settingsRepo,
		Gateway:     gateway,
		Email:       mailer,
		Performance: scorer,
		BasePenalty: config.AppConfig.BasePenalty,
		Clock:       clock,
		Logger:      logger,
	}

	listingService := &listing.Service{
		Listings: serviceRepo,
		Bookings: bookingRepo,
		Users:    userRepo,
		Settings: settingsRepo,
		Gate:     scorer,
		Notifier: notifier,
		Clock:    clock,
		Logger:   logger,
	}

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Discovery: handlers.NewDiscoveryHandler(discoveryEngine, utils.GetCacheClient(), logger),
		Booking:   handlers.NewBookingHandler(bookingService),
		User:      handlers.NewUserHandler(locationService),
		Listing:   handlers.NewListingHandler(listingService),
		Invoice:   handlers.NewInvoiceHandler(invoiceRepo, violationEngine),
		Admin:     handlers.NewAdminHandler(settingsRepo, violationEngine, listingService),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
