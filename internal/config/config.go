package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	gomysql "github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	LLM        LLMConfig        `yaml:"llm"`
	ImageAPI   ImageAPIConfig   `yaml:"image_api"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	Content    ContentConfig    `yaml:"content"`
	Database   DatabaseConfig   `yaml:"database"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type ImageAPIConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIToken     string `yaml:"api_token"`
	ModelVersion string `yaml:"model_version"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Folder    string `yaml:"folder"`
}

type ContentConfig struct {
	ExcludeDays  int      `yaml:"exclude_days"`
	TopicsPerDay int      `yaml:"topics_per_day"`
	Platforms    []string `yaml:"platforms"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

func Load(configFile string) *Config {
	c := &Config{
		Server:   ServerConfig{Port: 9876},
		LLM:      LLMConfig{BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai", Model: "gemini-2.0-flash"},
		ImageAPI: ImageAPIConfig{BaseURL: "https://engine.prod.bria-api.com/v1", ModelVersion: "2.2"},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Content:  ContentConfig{ExcludeDays: 7, TopicsPerDay: 3, Platforms: []string{"facebook", "instagram"}},
		Database: DatabaseConfig{Host: "localhost", Port: 3306, Name: "safety_studio"},
	}

	paths := []string{"etc/config-dev.yaml", "/etc/safety-studio/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	envOverride(&c.LLM.BaseURL, "LLM_BASE_URL")
	envOverride(&c.LLM.APIKey, "LLM_API_KEY")
	envOverride(&c.LLM.Model, "LLM_MODEL")
	envOverride(&c.ImageAPI.BaseURL, "IMAGE_API_BASE_URL")
	envOverride(&c.ImageAPI.APIToken, "IMAGE_API_TOKEN")
	envOverride(&c.Cloudinary.CloudName, "CLOUDINARY_CLOUD_NAME")
	envOverride(&c.Cloudinary.APIKey, "CLOUDINARY_API_KEY")
	envOverride(&c.Cloudinary.APISecret, "CLOUDINARY_API_SECRET")
	envOverride(&c.Database.Host, "DB_HOST")
	envOverride(&c.Database.User, "DB_USER")
	envOverride(&c.Database.Password, "DB_PASS")
	envOverride(&c.Database.Name, "DB_NAME")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverrideInt(&c.Server.Port, "PORT")
	envOverrideInt(&c.Database.Port, "DB_PORT")
	envOverrideInt(&c.Content.ExcludeDays, "CONTENT_EXCLUDE_DAYS")

	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) OpenGormDB() (*gorm.DB, error) {
	cfg := gomysql.NewConfig()
	cfg.User = c.Database.User
	cfg.Passwd = c.Database.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	cfg.DBName = c.Database.Name
	cfg.ParseTime = true

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	sqlDB := sql.OpenDB(connector)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
