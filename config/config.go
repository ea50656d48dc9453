// Package config loads xlitfix run configuration from YAML and the environment.
package config

import "time"

// Config is the root run configuration.
type Config struct {
	Language   string           `yaml:"language"    env:"XLITFIX_LANG"`
	MissingDir string           `yaml:"missing_dir" env:"XLITFIX_MISSING_DIR" env-default:"missing"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Batch      BatchConfig      `yaml:"batch"`
	Model      ModelConfig      `yaml:"model"`
	Cache      CacheConfig      `yaml:"cache"`
	Log        LogConfig        `yaml:"log"`
}

// DictionaryConfig selects the dictionary source: a file, or a PostgreSQL table.
type DictionaryConfig struct {
	Path     string `yaml:"path"      env:"DICT_PATH"`
	DSN      string `yaml:"dsn"       env:"DICT_DSN"`
	Table    string `yaml:"table"     env:"DICT_TABLE"     env-default:"dictionary_entries"`
	MaxNodes int    `yaml:"max_nodes" env:"DICT_MAX_NODES" env-default:"0"`
}

// CorpusConfig names the corpus columns.
type CorpusConfig struct {
	IDColumn   string `yaml:"id_column"   env:"CORPUS_ID_COLUMN"   env-default:"doc_id"`
	TextColumn string `yaml:"text_column" env:"CORPUS_TEXT_COLUMN" env-default:"translated"`
}

// BatchConfig holds batching settings.
type BatchConfig struct {
	Size       int `yaml:"size"        env:"BATCH_SIZE"        env-default:"16"`
	Workers    int `yaml:"workers"     env:"BATCH_WORKERS"     env-default:"4"`
	SampleSize int `yaml:"sample_size" env:"BATCH_SAMPLE_SIZE" env-default:"0"`
}

// ModelConfig holds transliteration model settings.
type ModelConfig struct {
	Enabled            bool          `yaml:"enabled"              env:"MODEL_ENABLED"              env-default:"false"`
	APIKey             string        `yaml:"api_key"              env:"OPENAI_API_KEY"`
	Name               string        `yaml:"name"                 env:"MODEL_NAME"                 env-default:"gpt-4o-mini"`
	BaseURL            string        `yaml:"base_url"             env:"MODEL_BASE_URL"`
	TargetLang         string        `yaml:"target_lang"          env:"MODEL_TARGET_LANG"          env-default:"en"`
	RequestsPerMinute  int           `yaml:"requests_per_minute"  env:"MODEL_REQUESTS_PER_MINUTE"  env-default:"60"`
	SentencesPerMinute int           `yaml:"sentences_per_minute" env:"MODEL_SENTENCES_PER_MINUTE" env-default:"0"`
	MaxRetries         int           `yaml:"max_retries"          env:"MODEL_MAX_RETRIES"          env-default:"3"`
	Timeout            time.Duration `yaml:"timeout"              env:"MODEL_TIMEOUT"              env-default:"60s"`
}

// CacheConfig holds model output cache settings.
type CacheConfig struct {
	TTL       int    `yaml:"ttl"        env:"CACHE_TTL"        env-default:"86400"`
	RedisURL  string `yaml:"redis_url"  env:"CACHE_REDIS_URL"`
	KeyPrefix string `yaml:"key_prefix" env:"CACHE_KEY_PREFIX" env-default:"xlitfix:"`
	File      string `yaml:"file"       env:"CACHE_FILE"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
