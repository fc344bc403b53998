package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgetrec/bundle"
	qhttp "budgetrec/http"
	"budgetrec/logging"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Timeout      time.Duration `yaml:"timeout"`
		MaxBodyBytes int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Bundle struct {
		Dir        string   `yaml:"dir"`
		Candidates []string `yaml:"candidates"`
	} `yaml:"bundle"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Log struct {
		Level string             `yaml:"level"`
		File  logging.FileConfig `yaml:"file"`
	} `yaml:"log"`
}

func main() {
	// 1. Load config (optional file, compiled defaults otherwise)
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(config.Log.Level, config.Log.File)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load the model bundle, once for the process lifetime
	b, err := bundle.Load(config.Bundle.Dir, config.Bundle.Candidates)
	if err != nil {
		logger.Fatal("failed to load model bundle", zap.Error(err))
	}
	logger.Info("model bundle loaded",
		zap.String("path", b.Path),
		zap.Bool("encoders", b.HasEncoders()),
		zap.Strings("feature_order", b.FeatureOrder),
	)

	handlers, err := qhttp.NewHandlers(b, logger, config.Cache.Size)
	if err != nil {
		logger.Fatal("failed to initialize handlers", zap.Error(err))
	}

	// 3. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Host = config.Http.Host
	serverConfig.Port = config.Http.Port
	serverConfig.Timeout = config.Http.Timeout
	serverConfig.MaxBodyBytes = config.Http.MaxBodyBytes

	server := qhttp.NewServer(serverConfig, handlers, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}

func defaultConfig() *Config {
	config := &Config{}
	config.Http.Host = "0.0.0.0"
	config.Http.Port = 8000
	config.Http.Timeout = 30 * time.Second
	config.Http.MaxBodyBytes = 1 << 20
	config.Bundle.Dir = "."
	config.Cache.Size = 1024
	config.Log.Level = "info"
	return config
}
