package main

import (
	"context"
	"log"
	"net/http"

	"ember_server/config"
	"ember_server/middleware"
	"ember_server/routes"
	"ember_server/services"
	"ember_server/store"
	"ember_server/store/dynamostore"
	"ember_server/store/memstore"
	"ember_server/ws"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Select the storage backend
	var st store.Store
	var s3Client *s3.Client
	switch cfg.DBBackend {
	case "memory":
		log.Println("Using in-memory store")
		st = memstore.New()
	default:
		log.Println("Initializing DynamoDB client...")
		st = dynamostore.New(dynamostore.InitializeClient(ctx))
		log.Println("DynamoDB client initialized.")
	}
	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v", err)
		}
		s3Client = s3.NewFromConfig(awsCfg)
	}

	// Start the push hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize services
	userService := &services.UserService{Store: st}
	queueService := &services.QueueService{Store: st, Hub: hub}
	decisionService := &services.DecisionService{Store: st, Hub: hub}
	chatService := &services.ChatService{Store: st, Hub: hub, Decisions: decisionService}
	matchService := &services.MatchService{Store: st, Hub: hub}
	encryptionService := &services.EncryptionService{Store: st}
	reportService := &services.ReportService{Store: st}
	s3Service := &services.S3Service{Client: s3Client, Bucket: cfg.S3Bucket}

	// Start the reveal-timeout sweeper
	sweeper := &services.Sweeper{Decisions: decisionService}
	go sweeper.Run(ctx)

	// Initialize the router
	r := mux.NewRouter()
	routes.RegisterRoutes(r)

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.Auth(cfg.AuthSecret, cfg.DevMode))

	routes.RegisterUserRoutes(protected, userService)
	routes.RegisterQueueRoutes(protected, queueService)
	routes.RegisterChatRoutes(protected, chatService, decisionService)
	routes.RegisterMatchRoutes(protected, matchService)
	routes.RegisterEncryptionRoutes(protected, encryptionService)
	routes.RegisterReportRoutes(protected, reportService)
	routes.RegisterS3Routes(protected, s3Service, userService)
	routes.RegisterWSRoutes(protected, hub, userService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Debug-User"},
		AllowCredentials: true,
	}).Handler(r)

	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
