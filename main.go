package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"staffly/projects-service/handlers"
	"staffly/projects-service/logging"
	"staffly/projects-service/planner"
	"staffly/projects-service/repositories"
	"staffly/projects-service/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Role")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func createProjectIndexes(collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.M{"status": 1}},
		{Keys: bson.M{"createdBy": 1}},
	}
	_, err := collection.Indexes().CreateMany(context.TODO(), indexes)
	if err != nil {
		return fmt.Errorf("failed to create project indexes: %v", err)
	}
	return nil
}

func envDurationMinutes(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 1 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}

func envDurationDays(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return fallback
	}
	return time.Duration(days) * 24 * time.Hour
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Projects Service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	mongoCollectionName := os.Getenv("MONGO_COLLECTION")
	if mongoURI == "" || mongoDBName == "" || mongoCollectionName == "" {
		logging.Logger.Fatal("Event ID: CONFIG_ERROR, Description: MONGO_URI, MONGO_DB_NAME and MONGO_COLLECTION must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.TODO())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	projectsCollection := client.Database(mongoDBName).Collection(mongoCollectionName)
	if err := createProjectIndexes(projectsCollection); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	notificationRepo, err := repositories.NewNotificationRepository(logging.Logger)
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASS_INIT_FAILED, Description: Failed to initialize notification repository: %v", err)
	}
	defer notificationRepo.CloseSession()
	notificationRepo.CreateTable()

	plannerURL := os.Getenv("PLANNER_URL")
	if plannerURL == "" {
		logging.Logger.Fatal("Event ID: CONFIG_ERROR, Description: PLANNER_URL is not set in the environment variables.")
	}
	plannerBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "PlannerServiceCB",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	plannerClient := planner.NewHTTPClient(plannerURL, plannerBreaker)

	projectRepo := repositories.NewProjectRepository(projectsCollection)
	projectService := services.NewProjectService(projectRepo, notificationRepo, plannerClient, logging.Logger)
	projectHandler := handlers.NewProjectHandler(projectService)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)

	scheduler := services.NewNotificationScheduler(
		projectRepo,
		notificationRepo,
		logging.Logger,
		envDurationMinutes("REMINDER_INTERVAL_MIN", 30*time.Minute),
		envDurationDays("ARCHIVE_RETENTION_DAYS", 7*24*time.Hour),
	)
	scheduler.Start()

	r := mux.NewRouter()
	r.HandleFunc("/api/projects", projectHandler.CreateProject).Methods("POST")
	r.HandleFunc("/api/projects", projectHandler.ListProjects).Methods("GET")
	r.HandleFunc("/api/projects/{id}", projectHandler.GetProjectByID).Methods("GET")
	r.HandleFunc("/api/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")
	r.HandleFunc("/api/projects/{id}/reassign", projectHandler.ReassignProject).Methods("PUT")
	r.HandleFunc("/api/projects/{id}/days/{dayNumber}/subtasks/{subtaskIndex}/complete", projectHandler.CompleteSubtask).Methods("POST")
	r.HandleFunc("/api/projects/{id}/days/{dayNumber}/complete", projectHandler.CompleteDay).Methods("POST")
	r.HandleFunc("/api/projects/{id}/days/{dayNumber}/status", projectHandler.SetDayStatus).Methods("PUT")
	r.HandleFunc("/api/projects/{id}/refine", projectHandler.RefinePlan).Methods("POST")
	r.HandleFunc("/api/tasks/user/{employeeRef}", projectHandler.GetTasksForUser).Methods("GET")
	r.HandleFunc("/api/notifications/{channel}", notificationHandler.GetNotificationsByChannel).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Projects service is running"))
	}).Methods("GET")

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatal("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: corsRouter,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("Event ID: SERVICE_STOPPING, Description: Shutdown signal received")
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_ERROR, Description: %v", err)
	}
	logging.Logger.Info("Event ID: SERVICE_STOPPED, Description: Projects service stopped")
}
