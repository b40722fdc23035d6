package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"SERVER"`
	Storage     StorageConfig     `mapstructure:"STORAGE"`
	Database    DatabaseConfig    `mapstructure:"DATABASE"`
	Aggregation AggregationConfig `mapstructure:"AGGREGATION"`
	Monitor     MonitorConfig     `mapstructure:"MONITOR"`
	AWS         AWSConfig         `mapstructure:"AWS"`
}

type ServerConfig struct {
	Host     string `mapstructure:"HOST"`
	Port     string `mapstructure:"PORT"`
	Endpoint string `mapstructure:"ENDPOINT"`
}

const (
	BackendLevelDB  = "leveldb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type StorageConfig struct {
	Backend string `mapstructure:"BACKEND"`
	Path    string `mapstructure:"PATH"`
}

type DatabaseConfig struct {
	Username     string `mapstructure:"USERNAME"`
	Password     string `mapstructure:"PASSWORD"`
	Host         string `mapstructure:"HOST"`
	Port         string `mapstructure:"PORT"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
}

// AggregationConfig fixes the deployment's model geometry and quorum rule.
// Lambda is recognized for interoperability but consumed by no logic.
type AggregationConfig struct {
	ModelSize     uint32  `mapstructure:"MODEL_SIZE"`
	InitWeight    float32 `mapstructure:"INIT_WEIGHT"`
	MajorityRatio float64 `mapstructure:"MAJORITY_RATIO"`
	Lambda        float64 `mapstructure:"LAMBDA"`
}

type MonitorConfig struct {
	Interval int `mapstructure:"INTERVAL"`
}

type AWSConfig struct {
	Region          string `mapstructure:"REGION"`
	BucketName      string `mapstructure:"BUCKET_NAME"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY"`
}

func (dc *DatabaseConfig) GetConnectionURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		dc.Username,
		dc.Password,
		dc.Host,
		dc.Port,
		dc.DatabaseName,
	)
}

type ConfigManager struct {
	config     *Config
	configPath string
	mutex      sync.RWMutex
}

var (
	instance *ConfigManager
	once     sync.Once
)

func GetConfigManager() *ConfigManager {
	once.Do(func() {
		instance = &ConfigManager{
			configPath: ".env",
		}
	})
	return instance
}

func (cm *ConfigManager) SetConfigPath(path string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.configPath = path
	cm.config = nil
}

func (cm *ConfigManager) GetConfig() (*Config, error) {
	cm.mutex.RLock()
	if cm.config != nil {
		defer cm.mutex.RUnlock()
		return cm.config, nil
	}
	cm.mutex.RUnlock()

	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if cm.config != nil {
		return cm.config, nil
	}

	var err error
	cm.config, err = loadConfigFile(cm.configPath)
	return cm.config, err
}

func (cm *ConfigManager) GetConfigPath() string {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return cm.configPath
}

func loadConfigFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetDefault("SERVER", map[string]interface{}{
		"HOST":     v.GetString("SERVER_HOST"),
		"PORT":     v.GetString("SERVER_PORT"),
		"ENDPOINT": v.GetString("SERVER_ENDPOINT"),
	})

	v.SetDefault("STORAGE", map[string]interface{}{
		"BACKEND": v.GetString("STORAGE_BACKEND"),
		"PATH":    v.GetString("STORAGE_PATH"),
	})

	v.SetDefault("DATABASE", map[string]interface{}{
		"USERNAME":      v.GetString("DATABASE_USERNAME"),
		"PASSWORD":      v.GetString("DATABASE_PASSWORD"),
		"HOST":          v.GetString("DATABASE_HOST"),
		"PORT":          v.GetString("DATABASE_PORT"),
		"DATABASE_NAME": v.GetString("DATABASE_DATABASE_NAME"),
	})

	v.SetDefault("AGGREGATION", map[string]interface{}{
		"MODEL_SIZE":     v.GetUint32("AGGREGATION_MODEL_SIZE"),
		"INIT_WEIGHT":    v.GetFloat64("AGGREGATION_INIT_WEIGHT"),
		"MAJORITY_RATIO": v.GetFloat64("AGGREGATION_MAJORITY_RATIO"),
		"LAMBDA":         v.GetFloat64("AGGREGATION_LAMBDA"),
	})

	v.SetDefault("MONITOR", map[string]interface{}{
		"INTERVAL": v.GetInt("MONITOR_INTERVAL"),
	})

	v.SetDefault("AWS", map[string]interface{}{
		"REGION":            v.GetString("AWS_REGION"),
		"BUCKET_NAME":       v.GetString("AWS_BUCKET_NAME"),
		"ACCESS_KEY_ID":     v.GetString("AWS_ACCESS_KEY_ID"),
		"SECRET_ACCESS_KEY": v.GetString("AWS_SECRET_ACCESS_KEY"),
	})

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if config.Storage.Backend == "" {
		config.Storage.Backend = BackendLevelDB
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(config *Config) error {
	switch config.Storage.Backend {
	case BackendLevelDB:
		if config.Storage.Path == "" {
			return fmt.Errorf("missing required storage path for leveldb backend")
		}
	case BackendPostgres:
		if config.Database.Username == "" || config.Database.Password == "" ||
			config.Database.Host == "" || config.Database.Port == "" ||
			config.Database.DatabaseName == "" {
			return fmt.Errorf("missing required database configuration")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}

	if config.Aggregation.ModelSize == 0 {
		return fmt.Errorf("aggregation model size must be positive")
	}
	if config.Aggregation.MajorityRatio <= 0 || config.Aggregation.MajorityRatio > 1 {
		return fmt.Errorf("aggregation majority ratio must be in (0, 1]")
	}

	return nil
}
