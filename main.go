package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"rumahcerdas/db"
	rhttp "rumahcerdas/http"
	"rumahcerdas/llm"
	"rumahcerdas/logging"
	"rumahcerdas/ml"
	"rumahcerdas/monitoring"
	"rumahcerdas/pricing"
	"rumahcerdas/property"
	"rumahcerdas/search"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
		Path  string `yaml:"path"`
	} `yaml:"log"`
	ML struct {
		ModelPath       string  `yaml:"model_path"`
		Trees           int     `yaml:"trees"`
		MaxTreeDepth    int     `yaml:"max_tree_depth"`
		TestRatio       float64 `yaml:"test_ratio"`
		MaxLandArea     float64 `yaml:"max_land_area"`
		MaxBuildingArea float64 `yaml:"max_building_area"`
		MaxDistance     float64 `yaml:"max_distance"`
	} `yaml:"ml"`
	Pricing struct {
		BasePricePath     string  `yaml:"base_price_path"`
		MinPlausiblePrice float64 `yaml:"min_plausible_price"`
		MaxPlausiblePrice float64 `yaml:"max_plausible_price"`
	} `yaml:"pricing"`
	LLM struct {
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"llm"`
}

func main() {
	config, err := loadConfig("config.yaml")
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(config.Log.Level, config.Log.Path)
	defer logger.Sync()

	if err := db.InitDB(config.Database.Path); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	logger.Info("database initialized", zap.String("path", config.Database.Path))

	tables, err := pricing.NewTableStore(config.Pricing.BasePricePath, logger)
	if err != nil {
		logger.Fatal("failed to load base price table", zap.Error(err))
	}
	defer tables.Close()

	limits := encoderLimits(config)
	model := loadModel(config, logger)

	estimator := pricing.NewEstimator(model, tables, bounds(config), limits, logger)

	hub := monitoring.NewHub(logger)
	defer hub.Close()

	searchService := search.NewService(criteriaExtractor(config, logger), availableListings, logger)

	rhttp.SetLogger(logger)
	rhttp.SetCounters(monitoring.NewCounters())
	rhttp.SetDashboardHub(hub)
	rhttp.SetEstimator(estimator)
	rhttp.SetSearcher(searchService)
	rhttp.SetTableStore(tables)
	rhttp.SetTrainingConfig(rhttp.TrainingConfig{
		ModelPath: config.ML.ModelPath,
		Trees:     config.ML.Trees,
		MaxDepth:  config.ML.MaxTreeDepth,
		TestRatio: config.ML.TestRatio,
		Limits:    limits,
	})

	server := rhttp.NewServer(rhttp.ServerConfig{Port: config.Http.Port})
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

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
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// loadModel returns nil when the artifact cannot be used; the service
// then runs permanently in fallback mode. Logged once here, not per
// request.
func loadModel(config *Config, logger *zap.Logger) ml.PriceModel {
	if config.ML.ModelPath == "" {
		logger.Warn("no model path configured, serving base-price fallback only")
		return nil
	}
	forest, err := ml.LoadModel(config.ML.ModelPath)
	if err != nil {
		switch {
		case errors.Is(err, ml.ErrIncompatibleArtifact):
			logger.Error("model artifact incompatible, serving base-price fallback only",
				zap.String("path", config.ML.ModelPath), zap.Error(err))
		default:
			logger.Error("model artifact failed to load, serving base-price fallback only",
				zap.String("path", config.ML.ModelPath), zap.Error(err))
		}
		return nil
	}
	if forest.MinorSkew() {
		logger.Warn("model artifact schema minor version differs from serving schema",
			zap.String("artifact", forest.SchemaVersion),
			zap.String("serving", ml.ArtifactSchemaVersion))
	}
	logger.Info("model artifact loaded",
		zap.String("path", config.ML.ModelPath),
		zap.Int("trees", len(forest.Trees)),
		zap.Int("features", forest.FeatureCount))
	return forest
}

func criteriaExtractor(config *Config, logger *zap.Logger) search.CriteriaExtractor {
	if config.LLM.APIKey == "" {
		logger.Info("no LLM api key configured, search uses pattern extraction only")
		return nil
	}
	return llm.NewGeminiExtractor(config.LLM.APIKey, config.LLM.Model, config.LLM.Timeout)
}

func availableListings() ([]property.Listing, error) {
	return db.QueryListings(db.ListingFilter{OnlyAvailable: true})
}

func encoderLimits(config *Config) ml.EncoderLimits {
	limits := ml.DefaultEncoderLimits()
	if config.ML.MaxLandArea > 0 {
		limits.MaxLandArea = config.ML.MaxLandArea
	}
	if config.ML.MaxBuildingArea > 0 {
		limits.MaxBuildingArea = config.ML.MaxBuildingArea
	}
	if config.ML.MaxDistance > 0 {
		limits.MaxDistance = config.ML.MaxDistance
	}
	return limits
}

func bounds(config *Config) pricing.Bounds {
	b := pricing.DefaultBounds()
	if config.Pricing.MinPlausiblePrice > 0 {
		b.MinPlausible = config.Pricing.MinPlausiblePrice
	}
	if config.Pricing.MaxPlausiblePrice > 0 {
		b.MaxPlausible = config.Pricing.MaxPlausiblePrice
	}
	return b
}
