package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatterAPI/handlers"
	"chatterAPI/internal/mail"
	"chatterAPI/internal/notification"
	"chatterAPI/middleware"
	"chatterAPI/services"
)

var (
	dbPool         *pgxpool.Pool
	jwtSecret      []byte
	authService    *services.AuthService
	memberService  *services.MemberService
	contactService *services.ContactService
	chatService    *services.ChatService
	messageService *services.MessageService
	pushService    *services.PushService
	weatherService *services.WeatherService
	fcmService     *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}
	jwtSecret = []byte(secret)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	mailer := mail.NewMailer(mail.Config{
		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPPort:  smtpPort,
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		FromEmail: os.Getenv("SMTP_FROM"),
		BaseURL:   os.Getenv("BASE_URL"),
	})

	pushService = services.NewPushService(dbPool)
	authService = services.NewAuthService(dbPool, mailer, jwtSecret)
	memberService = services.NewMemberService(dbPool)
	contactService = services.NewContactService(dbPool, pushService)
	chatService = services.NewChatService(dbPool, pushService)
	messageService = services.NewMessageService(dbPool, pushService)
	weatherService = services.NewWeatherService(os.Getenv("WEATHER_KEY"))

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		pushService.SetProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	authHandler := handlers.NewAuthHandler(authService)
	contactHandler := handlers.NewContactHandler(contactService, memberService)
	chatHandler := handlers.NewChatHandler(chatService)
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(pushService)
	weatherHandler := handlers.NewWeatherHandler(weatherService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "chatter-api"}`))
	}).Methods("GET")

	// Email links land here, so the verification page stays public.
	r.HandleFunc("/verification/{code}", authHandler.VerifyEmail).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/password/reset", authHandler.RequestPasswordReset).Methods("GET")
	api.HandleFunc("/auth/password", authHandler.ChangePassword).Methods("PUT")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuthMiddleware(jwtSecret))

	protected.HandleFunc("/contactrequests", contactHandler.RequestContact).Methods("POST")
	protected.HandleFunc("/contactrequests", contactHandler.ListPending).Methods("GET")
	protected.HandleFunc("/contactrequests/{memberId}", contactHandler.ConfirmContact).Methods("POST")
	protected.HandleFunc("/contactrequests/{memberId}", contactHandler.DenyContact).Methods("DELETE")

	protected.HandleFunc("/members/{memberId}", contactHandler.GetMember).Methods("GET")

	protected.HandleFunc("/contacts", contactHandler.ListContacts).Methods("GET")
	protected.HandleFunc("/contacts/search/{username}", contactHandler.Search).Methods("GET")
	protected.HandleFunc("/contacts/{memberId}", contactHandler.GetContact).Methods("GET")
	protected.HandleFunc("/contacts/{memberId}", contactHandler.RemoveContact).Methods("DELETE")

	protected.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	protected.HandleFunc("/chats", chatHandler.ListChats).Methods("GET")
	protected.HandleFunc("/chats/{chatId}", chatHandler.AddMembers).Methods("PUT")
	protected.HandleFunc("/chats/{chatId}", chatHandler.ListMembers).Methods("GET")
	protected.HandleFunc("/chats/{chatId}", chatHandler.LeaveChat).Methods("DELETE")

	protected.HandleFunc("/messages", messageHandler.SendMessage).Methods("POST")
	protected.HandleFunc("/messages/{chatId}", messageHandler.GetMessages).Methods("GET")

	protected.HandleFunc("/pushtoken", notificationHandler.RegisterDevice).Methods("PUT")
	protected.HandleFunc("/pushtoken", notificationHandler.RemoveDevice).Methods("DELETE")

	protected.HandleFunc("/weather/location", weatherHandler.GetByLocation).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "lat", "long", "email"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	pushService.Stop()

	log.Println("Server shutdown complete")
}
