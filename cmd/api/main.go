package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-account-api/internal/application/challenge"
	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/infrastructure/admin"
	"github.com/go-account-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
	"github.com/go-account-api/internal/infrastructure/mail"
	"github.com/go-account-api/internal/infrastructure/ocr"
	redisinfra "github.com/go-account-api/internal/infrastructure/redis"
	s3infra "github.com/go-account-api/internal/infrastructure/s3"
	snsinfra "github.com/go-account-api/internal/infrastructure/sns"
	"github.com/go-account-api/internal/pkg/password"
	transporthttp "github.com/go-account-api/internal/transport/http"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.Load()); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Println("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	codec := jwtinfra.NewCodec(cfg.Tokens)
	if missing := codec.Missing(); len(missing) > 0 {
		log.Printf("WARN: token secrets not set: %s", strings.Join(missing, ", "))
	}

	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	mailer, err := mail.New(cfg)
	if err != nil {
		return err
	}

	challengeRepo := dynamo.NewChallengeRepo(dynamoClient, cfg.DynamoTables.VerificationChallenges)
	deps := &transporthttp.Deps{
		UserRepo:          dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ChallengeRepo:     challengeRepo,
		VerificationRepo:  dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.UserVerifications),
		PasswordResetRepo: dynamo.NewPasswordResetRepo(dynamoClient, cfg.DynamoTables.PasswordResets),
		Images:            s3infra.NewStore(s3Client, cfg.S3BucketName),
		Mailer:            mailer,
		Tokens:            codec,
		Hasher:            password.NewHasher(cfg.BcryptCost),
		Admins:            admin.NewWhitelist(cfg.Admins),
	}

	// Optional collaborators stay nil interfaces when not configured.
	if cfg.SNSTopicARN != "" {
		if p, err := snsinfra.NewPublisher(ctx, cfg); err == nil {
			deps.Events = p
		} else {
			log.Printf("WARN: SNS publisher not available: %v", err)
		}
	}
	if cfg.RedisURL != "" {
		if client, err := redisinfra.NewClient(ctx, cfg.RedisURL); err == nil {
			defer client.Close()
			deps.EmailLimiter = redisinfra.NewSlidingWindowLimiter(client, "ratelimit:email:", cfg.EmailRateLimit, cfg.EmailRateWindow)
		} else {
			log.Printf("WARN: per-email rate limiting disabled: %v", err)
		}
	}
	if cfg.OCREndpointURL != "" {
		deps.OCR = ocr.NewClient(cfg.OCREndpointURL, cfg.OCRTimeout)
	}

	sweeper := challenge.NewSweeper(challenge.NewLifecycle(challenge.Deps{
		Store:  challengeRepo,
		Tokens: codec,
		TTL:    cfg.Challenge.CodeTTL,
	}), cfg.Challenge.SweepInterval)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sweeper.Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Println("Shutting down server...")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}
