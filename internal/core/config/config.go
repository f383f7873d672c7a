package config

import (
	"errors"
	"fmt"
	"log"
	"net/mail"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
}

type App struct {
	Name         string
	Env          string // development / production / test
	ClientOrigin string
	HTTP         HTTP
}

func (a App) IsProduction() bool { return a.Env == "production" }

type FileRotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate FileRotate
}

type DB struct {
	Driver string // mongo / memory
}

type Mongo struct {
	URI               string
	Database          string
	Username          string
	Password          string
	ConnectTimeoutSec int
	MinPoolSize       uint64
	MaxPoolSize       uint64
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Session struct {
	Store      string // redis / memory
	Secret     string
	CookieName string
	TTLHours   int
	Secure     bool
}

type Mail struct {
	Disabled bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Limit struct {
	Max       int
	WindowMin int
}

type RateLimit struct {
	General Limit
	Login   Limit
	Inquiry Limit
}

type Storage struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

func (s Storage) Enabled() bool { return s.Endpoint != "" && s.Bucket != "" }

type NATS struct {
	URL           string
	SubjectPrefix string
}

type Config struct {
	App       App
	Log       Log
	DB        DB
	Mongo     Mongo
	Redis     Redis `mapstructure:"redis"`
	Session   Session
	Mail      Mail
	RateLimit RateLimit
	Storage   Storage
	NATS      NATS `mapstructure:"nats"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "realty-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.clientOrigin", "http://localhost:5173")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 10)

	v.SetDefault("log.level", "info")

	v.SetDefault("db.driver", "mongo")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "realty")
	v.SetDefault("mongo.connectTimeoutSec", 10)
	v.SetDefault("mongo.maxPoolSize", 100)

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("session.store", "redis")
	v.SetDefault("session.cookieName", "connect.sid")
	v.SetDefault("session.ttlHours", 7*24)

	v.SetDefault("mail.port", 587)

	v.SetDefault("rateLimit.general.max", 100)
	v.SetDefault("rateLimit.general.windowMin", 15)
	v.SetDefault("rateLimit.login.max", 5)
	v.SetDefault("rateLimit.login.windowMin", 15)
	v.SetDefault("rateLimit.inquiry.max", 3)
	v.SetDefault("rateLimit.inquiry.windowMin", 60)

	v.SetDefault("nats.subjectPrefix", "realty")

	// 没有默认值的 key 需要显式绑定，否则纯环境变量部署时 Unmarshal 看不到
	for _, k := range []string{
		"log.json", "mongo.username", "mongo.password", "redis.password", "redis.db",
		"session.secret", "session.secure",
		"mail.disabled", "mail.host", "mail.username", "mail.password", "mail.from",
		"storage.endpoint", "storage.accessKey", "storage.secretKey", "storage.bucket",
		"storage.useSSL", "storage.publicBaseURL", "nats.url",
	} {
		_ = v.BindEnv(k)
	}
}

// Load 读取 yaml（可缺省）并叠加 APP_ 前缀的环境变量，如 APP_SESSION_SECRET
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}

func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("config file %s not found; using defaults and environment", path)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session.secret must be at least 32 characters"))
	}
	switch c.DB.Driver {
	case "mongo", "memory":
	default:
		errs = append(errs, fmt.Errorf("db.driver %q unsupported", c.DB.Driver))
	}
	switch c.Session.Store {
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("session.store %q unsupported", c.Session.Store))
	}
	if c.App.ClientOrigin == "" {
		errs = append(errs, errors.New("app.clientOrigin is required"))
	}
	if !c.Mail.Disabled {
		if c.Mail.Host == "" || c.Mail.Username == "" || c.Mail.Password == "" {
			errs = append(errs, errors.New("mail.host, mail.username and mail.password are required unless mail.disabled"))
		}
		if c.Mail.Port <= 0 {
			errs = append(errs, errors.New("mail.port must be a positive number"))
		}
		if _, err := mail.ParseAddress(c.Mail.From); err != nil {
			errs = append(errs, fmt.Errorf("mail.from invalid: %w", err))
		}
	}
	return errors.Join(errs...)
}
