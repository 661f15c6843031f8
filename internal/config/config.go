package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Env             string `yaml:"env"`
		ShutdownTimeout int    `yaml:"shutdown_timeout"` // секунды
	} `yaml:"server"`

	Database struct {
		DSN    string `yaml:"url"`
		Driver string `yaml:"driver"` // postgres, sqlite
		Debug  bool   `yaml:"debug"`
	} `yaml:"database"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Auth struct {
		JWTSecret          string `yaml:"jwt_secret"`
		TokenTTL           int    `yaml:"token_ttl"`             // минуты
		AllowUserIDHeader  bool   `yaml:"allow_user_id_header"`  // X-User-Id для старых клиентов
		PasswordMinLength  int    `yaml:"password_min_length"`
		OnlineWindowMinute int    `yaml:"online_window_minutes"` // окно "онлайн" по last_activity
	} `yaml:"auth"`

	Energy struct {
		Initial     int `yaml:"initial"`
		MessageCost int `yaml:"message_cost"`
	} `yaml:"energy"`

	Geo struct {
		DefaultRadiusKm float64 `yaml:"default_radius_km"`
		GeocoderURL     string  `yaml:"geocoder_url"`
		UserAgent       string  `yaml:"user_agent"`
		CacheTTL        int     `yaml:"cache_ttl"` // минуты
	} `yaml:"geo"`

	SMS struct {
		Provider       string `yaml:"provider"` // log, http
		APIURL         string `yaml:"api_url"`
		APIKey         string `yaml:"api_key"`
		Sender         string `yaml:"sender"`
		CodeTTL        int    `yaml:"code_ttl"`        // минуты
		ResendInterval int    `yaml:"resend_interval"` // секунды
	} `yaml:"sms"`

	Telegram struct {
		BotToken   string `yaml:"bot_token"`
		MaxAuthAge int    `yaml:"max_auth_age"` // секунды
	} `yaml:"telegram"`

	Payment struct {
		ShopID          string  `yaml:"shop_id"`
		SecretKey       string  `yaml:"secret_key"`
		APIURL          string  `yaml:"api_url"`
		ReturnURL       string  `yaml:"return_url"`
		Currency        string  `yaml:"currency"`
		MinAmount       int64   `yaml:"min_amount"`
		MaxAmount       int64   `yaml:"max_amount"`
		MaxBonusPercent float64 `yaml:"max_bonus_percent"`
	} `yaml:"payment"`

	Admin struct {
		Secret string `yaml:"secret"`
	} `yaml:"admin"`

	Storage struct {
		Type       string `yaml:"type"`      // local, s3
		BasePath   string `yaml:"base_path"` // For local storage
		BaseURL    string `yaml:"base_url"`  // Public URL base
		Bucket     string `yaml:"bucket"`
		Region     string `yaml:"region"`
		AccessKey  string `yaml:"access_key"`
		SecretKey  string `yaml:"secret_key"`
		Endpoint   string `yaml:"endpoint"` // S3-compatible endpoint
		UseSSL     bool   `yaml:"use_ssl"`
		PublicRead bool   `yaml:"public_read"`
	} `yaml:"storage"`

	Upload struct {
		MaxImageSize   int64 `yaml:"max_image_size"`
		MaxVoiceSize   int64 `yaml:"max_voice_size"`
		MaxImageSide   int   `yaml:"max_image_side"`
		MaxImagePixels int   `yaml:"max_image_pixels"`
		ImageQuality   int   `yaml:"image_quality"` // JPEG quality (1-100)
		PresignMinutes int   `yaml:"presign_minutes"`
		MaxPhotos      int   `yaml:"max_photos"`
	} `yaml:"upload"`

	Redis struct {
		Addr     string `yaml:"addr"` // пусто = кэш в памяти
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Realtime struct {
		SendBuffer     int `yaml:"send_buffer"`
		PingInterval   int `yaml:"ping_interval"`    // секунды
		MaxMessageSize int `yaml:"max_message_size"` // байты
	} `yaml:"realtime"`

	Workers struct {
		SmsCleanupInterval     int `yaml:"sms_cleanup_interval"`     // минуты
		PaymentExpiryInterval  int `yaml:"payment_expiry_interval"`  // минуты
		PaymentPendingLifetime int `yaml:"payment_pending_lifetime"` // часы
	} `yaml:"workers"`
}

var AppConfig *Config

// LoadConfig читает config.yaml, либо, если задан DATABASE_URL, переменные окружения.
func LoadConfig() {
	// .env опционален
	_ = godotenv.Load()

	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Println("Загрузка из config.yaml")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}
	} else {
		log.Println("✅ Загрузка конфигурации из переменных окружения")
		loadFromEnv(&cfg, dbURL)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	AppConfig = &cfg
}

func loadFromEnv(cfg *Config, dbURL string) {
	cfg.Database.DSN = dbURL
	cfg.Database.Driver = os.Getenv("DATABASE_DRIVER")
	cfg.Database.Debug = os.Getenv("DATABASE_DEBUG") == "true"
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = strings.Split(origins, ",")
	}
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port = envInt("SERVER_PORT", 0)

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.Auth.TokenTTL = envInt("JWT_TTL", 0)
	cfg.Auth.AllowUserIDHeader = os.Getenv("ALLOW_USER_ID_HEADER") == "true"

	cfg.Energy.MessageCost = envInt("MESSAGE_ENERGY_COST", 0)

	cfg.Geo.GeocoderURL = os.Getenv("GEOCODER_URL")
	cfg.Geo.UserAgent = os.Getenv("GEOCODER_USER_AGENT")

	cfg.SMS.Provider = os.Getenv("SMS_PROVIDER")
	cfg.SMS.APIURL = os.Getenv("SMS_API_URL")
	cfg.SMS.APIKey = os.Getenv("SMS_API_KEY")
	cfg.SMS.Sender = os.Getenv("SMS_SENDER")

	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	cfg.Payment.ShopID = os.Getenv("YOOKASSA_SHOP_ID")
	cfg.Payment.SecretKey = os.Getenv("YOOKASSA_SECRET_KEY")
	cfg.Payment.ReturnURL = os.Getenv("PAYMENT_RETURN_URL")

	cfg.Admin.Secret = os.Getenv("ADMIN_SECRET")

	cfg.Storage.Type = os.Getenv("STORAGE_TYPE")
	cfg.Storage.Bucket = os.Getenv("S3_BUCKET")
	cfg.Storage.Region = os.Getenv("S3_REGION")
	cfg.Storage.AccessKey = os.Getenv("S3_ACCESS_KEY")
	cfg.Storage.SecretKey = os.Getenv("S3_SECRET_KEY")
	cfg.Storage.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.Storage.BaseURL = os.Getenv("STORAGE_BASE_URL")
	cfg.Storage.PublicRead = true

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = envInt("REDIS_DB", 0)
}

// ApplyDefaults заполняет незаданные поля значениями по умолчанию.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 60 * 24 * 30
	}
	if cfg.Auth.PasswordMinLength == 0 {
		cfg.Auth.PasswordMinLength = 6
	}
	if cfg.Auth.OnlineWindowMinute == 0 {
		cfg.Auth.OnlineWindowMinute = 5
	}

	if cfg.Energy.Initial == 0 {
		cfg.Energy.Initial = 100
	}
	if cfg.Energy.MessageCost == 0 {
		cfg.Energy.MessageCost = 10
	}

	if cfg.Geo.DefaultRadiusKm == 0 {
		cfg.Geo.DefaultRadiusKm = 10
	}
	if cfg.Geo.GeocoderURL == "" {
		cfg.Geo.GeocoderURL = "https://nominatim.openstreetmap.org/reverse"
	}
	if cfg.Geo.UserAgent == "" {
		cfg.Geo.UserAgent = "AuxChat/1.0"
	}
	if cfg.Geo.CacheTTL == 0 {
		cfg.Geo.CacheTTL = 60 * 24
	}

	if cfg.SMS.Provider == "" {
		cfg.SMS.Provider = "log"
	}
	if cfg.SMS.CodeTTL == 0 {
		cfg.SMS.CodeTTL = 10
	}
	if cfg.SMS.ResendInterval == 0 {
		cfg.SMS.ResendInterval = 60
	}

	if cfg.Telegram.MaxAuthAge == 0 {
		cfg.Telegram.MaxAuthAge = 24 * 60 * 60
	}

	if cfg.Payment.APIURL == "" {
		cfg.Payment.APIURL = "https://api.yookassa.ru/v3/payments"
	}
	if cfg.Payment.ReturnURL == "" {
		cfg.Payment.ReturnURL = "https://auxchat.ru"
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "RUB"
	}
	if cfg.Payment.MinAmount == 0 {
		cfg.Payment.MinAmount = 500
	}
	if cfg.Payment.MaxAmount == 0 {
		cfg.Payment.MaxAmount = 10000
	}
	if cfg.Payment.MaxBonusPercent == 0 {
		cfg.Payment.MaxBonusPercent = 30
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.Type == "local" {
		if cfg.Storage.BasePath == "" {
			cfg.Storage.BasePath = "./uploads"
		}
		if cfg.Storage.BaseURL == "" {
			cfg.Storage.BaseURL = "/files"
		}
	}

	if cfg.Upload.MaxImageSize == 0 {
		cfg.Upload.MaxImageSize = 10 * 1024 * 1024 // 10MB
	}
	if cfg.Upload.MaxVoiceSize == 0 {
		cfg.Upload.MaxVoiceSize = 5 * 1024 * 1024 // 5MB
	}
	if cfg.Upload.MaxImageSide == 0 {
		cfg.Upload.MaxImageSide = 1280
	}
	if cfg.Upload.MaxImagePixels == 0 {
		cfg.Upload.MaxImagePixels = 40_000_000
	}
	if cfg.Upload.ImageQuality == 0 {
		cfg.Upload.ImageQuality = 85
	}
	if cfg.Upload.PresignMinutes == 0 {
		cfg.Upload.PresignMinutes = 10
	}
	if cfg.Upload.MaxPhotos == 0 {
		cfg.Upload.MaxPhotos = 6
	}

	if cfg.Realtime.SendBuffer == 0 {
		cfg.Realtime.SendBuffer = 256
	}
	if cfg.Realtime.PingInterval == 0 {
		cfg.Realtime.PingInterval = 30
	}
	if cfg.Realtime.MaxMessageSize == 0 {
		cfg.Realtime.MaxMessageSize = 4096
	}

	if cfg.Workers.SmsCleanupInterval == 0 {
		cfg.Workers.SmsCleanupInterval = 60
	}
	if cfg.Workers.PaymentExpiryInterval == 0 {
		cfg.Workers.PaymentExpiryInterval = 30
	}
	if cfg.Workers.PaymentPendingLifetime == 0 {
		cfg.Workers.PaymentPendingLifetime = 24
	}
}

// Validate проверяет обязательные поля.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Payment.MinAmount >= c.Payment.MaxAmount {
		return fmt.Errorf("payment.min_amount must be less than payment.max_amount")
	}
	if c.Storage.Type == "s3" && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required for s3 storage")
	}
	return nil
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTL) * time.Minute
}

func (c *Config) OnlineWindow() time.Duration {
	return time.Duration(c.Auth.OnlineWindowMinute) * time.Minute
}

func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.Realtime.PingInterval) * time.Second
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ Некорректное значение %s=%q, используется %d", key, v, def)
		return def
	}
	return n
}
