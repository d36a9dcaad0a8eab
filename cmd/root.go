package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/keywords"
)

const (
	app = "resume-matcher"
)

type Config struct {
	FuzzyThreshold float64           `mapstructure:"fuzzy-threshold" json:"fuzzy-threshold" validate:"gt=0,lte=1"`
	Concurrency    int               `mapstructure:"concurrency" json:"concurrency" validate:"gte=1,lte=32"`
	Output         string            `mapstructure:"output" json:"output" validate:"oneof=json table"`
	AI             *AIConfig         `mapstructure:"ai" json:"ai" validate:"required"`
	Headhunter     *HeadhunterConfig `mapstructure:"headhunter" json:"headhunter" validate:"required"`
}

type AIConfig struct {
	Enabled    bool          `mapstructure:"enabled" json:"enabled"`
	Model      string        `mapstructure:"model" json:"model"`
	APIKey     string        `mapstructure:"api-key" json:"-"`
	APIKeyFile string        `mapstructure:"api-key-file" json:"api-key-file"`
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`
	// ProfileTimeout bounds the resume field extraction call.
	ProfileTimeout time.Duration `mapstructure:"profile-timeout" json:"profile-timeout" validate:"gt=0"`
	RatePerMinute  float64       `mapstructure:"rate-per-minute" json:"rate-per-minute" validate:"gte=0"`
	MaxLogLength   int           `mapstructure:"max-log-length" json:"max-log-length" validate:"gte=0"`
}

type HeadhunterConfig struct {
	TokenFile string `mapstructure:"token-file" json:"token-file"`
	UserAgent string `mapstructure:"user-agent" json:"user-agent"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher scores resumes against job descriptions with weighted keywords and an optional AI assessment",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory, optional)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "append logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringP("output", "o", "", "result format: json or table")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	if err := bindEnv(viper.GetViper()); err != nil {
		log.Fatalf("binding environment variables: %v", err)
	}
	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fuzzy-threshold", keywords.DefaultFuzzyThreshold)
	v.SetDefault("concurrency", 4)
	v.SetDefault("output", "json")
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.model", gemini.DefaultModel)
	v.SetDefault("ai.timeout", gemini.DefaultTimeout)
	v.SetDefault("ai.profile-timeout", gemini.DefaultProfileTimeout)
	v.SetDefault("ai.rate-per-minute", 0)
	v.SetDefault("ai.max-log-length", 1000)
	v.SetDefault("headhunter.token-file", "")
	v.SetDefault("headhunter.user-agent", "")
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"headhunter.token-file": "HH_TOKEN_FILE",
		"ai.api-key-file":       "GEMINI_API_KEY_FILE",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}

	return nil
}

func initConfig() {
	// .env is optional and never overrides the real environment.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The default config file is optional, an explicit one is not.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if config == nil {
		return nil, errors.New("config is empty")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid key by its config name.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", configKey(fe.Namespace()), fe.Tag()+fe.Param(), fe.Value()))
	}

	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

var configKeys = map[string]string{
	"FuzzyThreshold": "fuzzy-threshold",
	"Concurrency":    "concurrency",
	"Output":         "output",
	"AI":             "ai",
	"Headhunter":     "headhunter",
	"Timeout":        "timeout",
	"ProfileTimeout": "profile-timeout",
	"RatePerMinute":  "rate-per-minute",
	"MaxLogLength":   "max-log-length",
}

// configKey turns "Config.AI.Timeout" into "ai.timeout".
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	for i, part := range parts {
		if key, ok := configKeys[part]; ok {
			parts[i] = key
		}
	}

	return strings.Join(parts, ".")
}
