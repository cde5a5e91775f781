package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/k-negishi/whatsapp-events-bot/internal/config"
	"github.com/k-negishi/whatsapp-events-bot/internal/gateway"
	"github.com/k-negishi/whatsapp-events-bot/internal/handler"
	"github.com/k-negishi/whatsapp-events-bot/internal/logger"
	"github.com/k-negishi/whatsapp-events-bot/internal/usecase"
)

func main() {
	ctx := context.Background()

	// 設定を読み込み
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("設定読み込みエラー: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)

	h, err := newHandler(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("初期化に失敗しました", "error", err)
		os.Exit(1)
	}

	if cfg.OnLambda {
		lambda.Start(h.HandleAPIGateway)
		return
	}

	if err := serveLocal(cfg.HTTPPort, h, appLogger); err != nil {
		appLogger.Error("HTTPサーバーが異常終了しました", "error", err)
		os.Exit(1)
	}
}

// newHandler 各クライアントを初期化してハンドラーを組み立てる
func newHandler(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*handler.Handler, error) {
	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		return nil, err
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	repo := gateway.NewDynamoDBEventRepository(dynamoClient, cfg.EventsTableName)
	blobs := gateway.NewS3BlobStore(s3Client, cfg.PostersBucket, cfg.AWSRegion, cfg.S3Endpoint)
	messenger := gateway.NewTwilioMessenger(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber)
	media := gateway.NewTwilioMediaFetcher(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.MaxMediaBytes())

	dispatcher := usecase.NewDispatcher(repo, blobs, messenger, media, cfg.FrontendURL, appLogger)
	return handler.New(dispatcher, repo, appLogger), nil
}

// serveLocal ローカル実行用のHTTPサーバーを起動し、シグナル受信で停止する
func serveLocal(port int, h *handler.Handler, appLogger *slog.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("HTTPサーバーを起動します", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
