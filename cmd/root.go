package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobmatch"

	ModeProxy  = "proxy"
	ModeDirect = "direct"

	ProviderGigaChat = "gigachat"
	ProviderGemini   = "gemini"
)

type Config struct {
	Mode    string         `mapstructure:"mode"`
	Proxy   *ProxyConfig   `mapstructure:"proxy"`
	Direct  *DirectConfig  `mapstructure:"direct"`
	Store   *StoreConfig   `mapstructure:"store"`
	History *HistoryConfig `mapstructure:"history"`
}

type ProxyConfig struct {
	URL        string `mapstructure:"url"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type DirectConfig struct {
	Provider string          `mapstructure:"provider"`
	GigaChat *GigaChatConfig `mapstructure:"gigachat"`
	Gemini   *GeminiConfig   `mapstructure:"gemini"`
}

type GigaChatConfig struct {
	AuthKeyFile string `mapstructure:"auth-key-file"`
	Model       string `mapstructure:"model"`
	OAuthURL    string `mapstructure:"oauth-url"`
	APIURL      string `mapstructure:"api-url"`
	Scope       string `mapstructure:"scope"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type HistoryConfig struct {
	Path       string `mapstructure:"path"`
	RequestLog string `mapstructure:"request-log"`
	FullLog    string `mapstructure:"full-log"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobmatch is a cli for scoring job vacancies against your resume and preferences",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("direct.gigachat.auth-key-file", "JOBMATCH_GIGACHAT_AUTH_KEY_FILE"); err != nil {
		log.Fatalf("binding JOBMATCH_GIGACHAT_AUTH_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("proxy.api-key-file", "JOBMATCH_PROXY_API_KEY_FILE"); err != nil {
		log.Fatalf("binding JOBMATCH_PROXY_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("mode", ModeDirect)
	viper.SetDefault("direct.provider", ProviderGigaChat)
	viper.SetDefault("store.path", "jobmatch.db")
	viper.SetDefault("history.path", "jobmatch_history.db")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing config file is fine: flags, env and defaults still apply.
	// A present but unparseable one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
