package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"battlebrain-service/internal/app"
	"battlebrain-service/internal/config"
	"battlebrain-service/internal/domain"
	"battlebrain-service/internal/infra/memory"
	pgbank "battlebrain-service/internal/infra/postgres"
	redisstore "battlebrain-service/internal/infra/redis"
	transport "battlebrain-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz competition server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var bankLoader memory.BankLoader = memory.NewStaticBankLoader(sampleBanks())
	if pool != nil {
		bankLoader = pgbank.NewBankLoader(pool)
	}
	bankTTL := config.Duration(cfg.Quiz.BankTTL, 10*time.Minute)
	bank := memory.NewQuestionBank(bankLoader, bankTTL)

	type recordStore interface {
		app.StudentRepository
		app.QuizRepository
		app.AdminRepository
		app.AttemptLogRepository
	}
	var store recordStore = memory.NewRecordStore()
	if redisClient != nil {
		store = redisstore.NewRecordStore(redisClient)
	}

	stageTime := config.Duration(cfg.Quiz.StageTime, 10*time.Minute)

	engine := app.NewEngine(store, store)
	quizService := app.NewQuizService(bank, store)
	adminService := app.NewAdminService(store, store)
	studentService := app.NewStudentService(store, store)
	resolver := app.NewLinkResolver(store, store)

	attemptHandler := transport.NewAttemptHandler(engine, quizService, stageTime)
	apiHandler := transport.NewAPIHandler(adminService, studentService, quizService, resolver, engine, store)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/attempt", attemptHandler.ServeAttempt)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting battlebrain service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBanks provides a tiny demo bank; production deployments load banks
// from Postgres via the migrate and seed commands.
func sampleBanks() map[string][]domain.Question {
	maths := make([]domain.Question, 0, domain.TotalQuestions)
	for i := 0; i < domain.TotalQuestions; i++ {
		maths = append(maths, demoQuestion(i))
	}
	return map[string][]domain.Question{
		memory.BankKey("JSS1", "Maths"): maths,
	}
}

func demoQuestion(i int) domain.Question {
	sum := i + i + 1
	options := []string{
		strconv.Itoa(sum - 1),
		strconv.Itoa(sum),
		strconv.Itoa(sum + 1),
		strconv.Itoa(sum + 2),
	}
	return domain.Question{
		Question: fmt.Sprintf("What is %d + %d?", i, i+1),
		Options:  options,
		Answer:   strconv.Itoa(sum),
	}
}
