package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"indastreet/config"
	"indastreet/cron"
	"indastreet/database"
	assignmentRepo "indastreet/database/repository/assignment"
	bookingRepoPkg "indastreet/database/repository/booking"
	chatRepoPkg "indastreet/database/repository/chat"
	providerRepoPkg "indastreet/database/repository/provider"
	recordsRepoPkg "indastreet/database/repository/records"
	userRepoPkg "indastreet/database/repository/user"
	"indastreet/handlers"
	"indastreet/middleware"
	"indastreet/routes"
	"indastreet/services/booking"
	"indastreet/services/chat"
	"indastreet/services/coins"
	"indastreet/services/directory"
	"indastreet/services/notification"
	"indastreet/services/payment"
	"indastreet/services/provider"
	"indastreet/services/tasks"
	"indastreet/services/user"
	"indastreet/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	// repositories.
	bookingsRepo := bookingRepoPkg.NewMongoBookingRepo()
	attemptsRepo := assignmentRepo.NewMongoAttemptRepo()
	penaltiesRepo := assignmentRepo.NewMongoPenaltyRepo()
	providersRepo := providerRepoPkg.NewMongoProviderRepo()
	usersRepo := userRepoPkg.NewMongoUserRepo()
	messagesRepo := chatRepoPkg.NewMongoMessageRepo()
	commissionsRepo := recordsRepoPkg.NewMongoCommissionRepo()
	coinLedgerRepo := recordsRepoPkg.NewMongoCoinLedgerRepo()

	// services.
	userService := &user.DefaultUserService{Repo: usersRepo}
	providerService := &provider.DefaultProviderService{Repo: providersRepo}
	providerDirectory := &directory.DefaultProviderDirectory{Repo: providersRepo}
	chatService := &chat.DefaultChatService{Repo: messagesRepo}
	alertSink := &notification.FCMAlertSink{Providers: providersRepo, Users: usersRepo}
	coinService := &coins.DefaultCoinService{
		Ledger:    coinLedgerRepo,
		Users:     usersRepo,
		Providers: providersRepo,
	}
	paymentService := &payment.StripeCommissionService{
		Repo:   commissionsRepo,
		Rate:   config.AppConfig.CommissionRate,
		Logger: logger,
	}

	bookingService := booking.NewDefaultBookingService(
		booking.Dependencies{
			Bookings:  bookingsRepo,
			Attempts:  attemptsRepo,
			Penalties: penaltiesRepo,
			Providers: providersRepo,
			Directory: providerDirectory,
			Chat:      chatService,
			Coins:     coinService,
			Payment:   paymentService,
			Notifier:  alertSink,
			Reminders: tasks.NewAsynqReminderScheduler(),
		},
		booking.Config{
			ResponseWindow:      config.AppConfig.ResponseWindow,
			AlertInterval:       config.AppConfig.AlertInterval,
			SearchRadiusKm:      config.AppConfig.SearchRadiusKm,
			RatingPenalty:       config.AppConfig.RatingPenalty,
			CoinPenalty:         config.AppConfig.CoinPenalty,
			CompletionCoinAward: config.AppConfig.CompletionCoinAward,
			ExcludeDeclines:     config.AppConfig.ExcludeDeclines,
		},
		booking.RealClock(),
		logger,
	)

	// Restart the alert loop and response timer for bookings interrupted by
	// the previous shutdown.
	if err := bookingService.ResumeAssignments(context.Background()); err != nil {
		logger.Error("failed to resume assignment cycles", zap.Error(err))
	}

	// background reminder worker.
	cron.InitReminderWorker(alertSink)

	// handlers.
	authHandler := handlers.NewAuthHandler(userService, providerService)
	bookingHandler := handlers.NewBookingHandler(bookingService, chatService, logger)
	providerHandler := handlers.NewProviderHandler(providerService, providerDirectory, config.AppConfig.SearchRadiusKm)

	routes.RegisterRoutes(router, authHandler, bookingHandler, providerHandler)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("port", config.AppConfig.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting requests, then cancel every pending
	// response timer and alert session.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	bookingService.Shutdown()
}
