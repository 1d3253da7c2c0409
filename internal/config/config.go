package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nkurunziza/momo-ledger/pkg/logger"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every environment-driven setting of the pipeline. Only
// this struct must be used to read configuration values, no direct
// access to env, ini or any other config source should be made.
type Config struct {
	AppEnv   string `env:"APP_ENV" default:"dev"`
	AppName  string `env:"APP_NAME" default:"momo_ledger"`
	AppDebug bool   `env:"APP_DEBUG" default:"1"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE" default:"momo"`
	MetricsAddr   string `env:"METRICS_ADDR" default:":9100"`

	PipelineWorkers      int           `env:"PIPELINE_WORKERS" default:"8"`
	PipelineBatchTimeout time.Duration `env:"PIPELINE_BATCH_TIMEOUT" default:"10m"`
	PipelineCurrency     string        `env:"PIPELINE_CURRENCY" default:"RWF"`
	PipelinePhonePrefix  string        `env:"PIPELINE_PHONE_PREFIX" default:"250"`

	FeePolicyType    string  `env:"FEE_POLICY_TYPE" default:"Percentage"`
	FeePolicyPercent float64 `env:"FEE_POLICY_PERCENT" default:"1.0"`
	FeePolicyFlat    int64   `env:"FEE_POLICY_FLAT" default:"0"`

	AuditStreamPath string `env:"AUDIT_STREAM_PATH" default:"./audit.log"`
	ExportDir       string `env:"EXPORT_DIR" default:"./exports"`

	DeadLetterMaxLen int64 `env:"DEAD_LETTER_MAX_LEN" default:"100000"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)

	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
