package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
)

// SSMParameterGetter Parameter Storeからパラメータを取得するクライアント
type SSMParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Config アプリケーション設定構造体
type Config struct {
	// AWSリソース設定
	AWSRegion       string
	EventsTableName string
	PostersBucket   string
	DynamoEndpoint  string
	S3Endpoint      string

	// イベント詳細ページのホスト (CloudFrontのドメイン名)
	FrontendURL string

	// Twilio設定
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string

	// その他設定
	LogLevel       string
	HTTPPort       int
	MaxMediaSizeMB int

	// OnLambda AWS Lambda上で実行されているか
	OnLambda bool

	awsConfig *aws.Config
	ssmClient SSMParameterGetter
}

// Load 環境に応じて設定を読み込み
func Load(ctx context.Context) (*Config, error) {
	// AWS Lambda環境かどうか判定
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return loadAWSConfig(ctx)
	}
	return loadLocalConfig()
}

// loadBaseConfig 環境変数から共通の設定を読み込み
func loadBaseConfig() *Config {
	return &Config{
		AWSRegion:            getEnvOrDefault("AWS_REGION", "us-east-1"),
		EventsTableName:      getEnvOrDefault("EVENTS_TABLE_NAME", ""),
		PostersBucket:        getEnvOrDefault("EVENT_POSTERS_S3_BUCKET", ""),
		DynamoEndpoint:       getEnvOrDefault("DYNAMO_ENDPOINT", ""),
		S3Endpoint:           getEnvOrDefault("S3_ENDPOINT", ""),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", ""),
		TwilioWhatsAppNumber: getEnvOrDefault("TWILIO_WHATSAPP_NUMBER", ""),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "INFO"),
		HTTPPort:             getEnvAsIntOrDefault("HTTP_PORT", 8080),
		MaxMediaSizeMB:       getEnvAsIntOrDefault("MAX_MEDIA_SIZE_MB", 10),
	}
}

// loadLocalConfig ローカル開発環境用の設定読み込み
func loadLocalConfig() (*Config, error) {
	// .envファイルを読み込み（存在する場合のみ）
	if err := godotenv.Load(); err != nil {
		// .envファイルが存在しない場合はエラーにしない
		fmt.Printf("Warning: .envファイルが見つかりません: %v\n", err)
	}

	cfg := loadBaseConfig()
	cfg.TwilioAccountSID = getEnvOrDefault("TWILIO_ACCOUNT_SID", "")
	cfg.TwilioAuthToken = getEnvOrDefault("TWILIO_AUTH_TOKEN", "")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAWSConfig AWS Lambda環境用の設定読み込み
func loadAWSConfig(ctx context.Context) (*Config, error) {
	// AWS設定を初期化
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %w", err)
	}

	cfg := loadBaseConfig()
	cfg.OnLambda = true
	cfg.awsConfig = &awsConfig
	cfg.ssmClient = ssm.NewFromConfig(awsConfig)
	if awsConfig.Region != "" {
		cfg.AWSRegion = awsConfig.Region
	}

	// Parameter Storeから機密情報を取得
	if err := cfg.loadFromParameterStore(ctx); err != nil {
		return nil, fmt.Errorf("Parameter Storeからの設定読み込みに失敗しました: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromParameterStore Parameter Storeから機密情報を読み込み
func (c *Config) loadFromParameterStore(ctx context.Context) error {
	// Twilio Account SIDを取得
	sidParam := getEnvOrDefault("TWILIO_ACCOUNT_SID_PARAM", "/twilio/accountSid")
	sid, err := c.getParameter(ctx, sidParam, true)
	if err != nil {
		return fmt.Errorf("Twilio Account SIDの取得に失敗しました: %w", err)
	}
	c.TwilioAccountSID = sid

	// Twilio Auth Tokenを取得
	tokenParam := getEnvOrDefault("TWILIO_AUTH_TOKEN_PARAM", "/twilio/authToken")
	token, err := c.getParameter(ctx, tokenParam, true)
	if err != nil {
		return fmt.Errorf("Twilio Auth Tokenの取得に失敗しました: %w", err)
	}
	c.TwilioAuthToken = token

	return nil
}

// getParameter Parameter Storeから指定されたパラメータを取得
func (c *Config) getParameter(ctx context.Context, paramName string, withDecryption bool) (string, error) {
	input := &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(withDecryption),
	}

	result, err := c.ssmClient.GetParameter(ctx, input)
	if err != nil {
		return "", fmt.Errorf("パラメータ %s の取得に失敗しました: %w", paramName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("パラメータ %s が空の値です", paramName)
	}

	return *result.Parameter.Value, nil
}

// validate 必須設定項目の確認
func (c *Config) validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"EVENTS_TABLE_NAME", c.EventsTableName},
		{"EVENT_POSTERS_S3_BUCKET", c.PostersBucket},
		{"FRONTEND_URL", c.FrontendURL},
		{"TWILIO_ACCOUNT_SID", c.TwilioAccountSID},
		{"TWILIO_AUTH_TOKEN", c.TwilioAuthToken},
		{"TWILIO_WHATSAPP_NUMBER", c.TwilioWhatsAppNumber},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s環境変数が設定されていません", r.key)
		}
	}
	return nil
}

// AWS AWSクライアント用の設定を返す。ローカルでは初回呼び出し時に読み込む
func (c *Config) AWS(ctx context.Context) (aws.Config, error) {
	if c.awsConfig != nil {
		return *c.awsConfig, nil
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, config.WithRegion(c.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("AWS設定の読み込みに失敗しました: %w", err)
	}
	c.awsConfig = &awsConfig
	return awsConfig, nil
}

// MaxMediaBytes 添付メディアの最大サイズ (バイト)
func (c *Config) MaxMediaBytes() int64 {
	return int64(c.MaxMediaSizeMB) << 20
}

// getEnvOrDefault 環境変数を取得し、存在しない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault 環境変数を整数として取得し、存在しないか不正な場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := getEnvOrDefault(key, ""); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultValue
}
