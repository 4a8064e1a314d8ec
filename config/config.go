package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http" validate:"required"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database" validate:"required"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	SMS      SMSConfig      `yaml:"sms"`
	Booking  BookingConfig  `yaml:"booking" validate:"required"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address" validate:"required"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required,gt=0"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic" validate:"required_with=Brokers"`
	GroupID            string   `yaml:"group_id"`
}

type SMSConfig struct {
	Provider       string               `yaml:"provider" validate:"omitempty,oneof=twilio africastalking log"`
	Shortcode      string               `yaml:"shortcode"`
	AlertPhones    []string             `yaml:"alert_phones"`
	Twilio         TwilioConfig         `yaml:"twilio"`
	AfricasTalking AfricasTalkingConfig `yaml:"africastalking"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
}

type AfricasTalkingConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	APIKey   string `yaml:"api_key"`
	SenderID string `yaml:"sender_id"`
}

type BookingConfig struct {
	CountryCode        string `yaml:"country_code" validate:"required,numeric"`
	IncentiveTSh       int64  `yaml:"incentive_tsh" validate:"gte=0"`
	FinalizeTTLMinutes int    `yaml:"finalize_ttl_minutes" validate:"gte=0"`
	RequestsPerMinute  int    `yaml:"requests_per_minute" validate:"gte=0"`
}

type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// LoadConfig reads the YAML file at path, applies environment overrides
// (optionally sourced from a .env file) and validates the result.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	override(&cfg.Database.Password, "DATABASE_PASSWORD")
	override(&cfg.Redis.Password, "REDIS_PASSWORD")
	override(&cfg.SMS.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	override(&cfg.SMS.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	override(&cfg.SMS.Twilio.From, "TWILIO_FROM_NUMBER")
	override(&cfg.SMS.AfricasTalking.Username, "AT_USERNAME")
	override(&cfg.SMS.AfricasTalking.APIKey, "AT_API_KEY")
	override(&cfg.Log.Env, "ENV")
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Booking.FinalizeTTLMinutes == 0 {
		cfg.Booking.FinalizeTTLMinutes = 30
	}
	if cfg.SMS.Provider == "" {
		cfg.SMS.Provider = "log"
	}
	if cfg.Log.Env == "" {
		cfg.Log.Env = "development"
	}
}

func override(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}
