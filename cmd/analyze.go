package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/analystexe/jobmatch/internal/ai"
	"github.com/analystexe/jobmatch/internal/ai/gemini"
	"github.com/analystexe/jobmatch/internal/ai/gigachat"
	"github.com/analystexe/jobmatch/internal/analysis"
	"github.com/analystexe/jobmatch/internal/history"
	"github.com/analystexe/jobmatch/internal/logger"
	"github.com/analystexe/jobmatch/internal/page"
	"github.com/analystexe/jobmatch/internal/profile"
	"github.com/analystexe/jobmatch/internal/proxy"
	"github.com/analystexe/jobmatch/internal/render"
	"github.com/analystexe/jobmatch/internal/secrets"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	// minVacancyRunes is the minimum extracted text length worth a backend
	// call. Shorter text means extraction failed and the user should paste
	// the posting manually.
	minVacancyRunes = 100

	previewRunes = 300
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract a vacancy and score it against the saved profile",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("url", "u", "", "vacancy page url to fetch")
	analyzeCmd.Flags().StringP("file", "f", "", "saved html file with the vacancy page")
	analyzeCmd.Flags().Bool("stdin", false, "read the vacancy page html from stdin")
	analyzeCmd.Flags().StringP("text", "t", "", "vacancy text passed directly, skipping extraction")
	analyzeCmd.Flags().StringP("selection", "s", "", "text the user selected on the page")
	analyzeCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before sending")
	analyzeCmd.Flags().Bool("raw", false, "print the result as json instead of the report")
}

// analyze is the main command of the cli.
func analyze(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	store, err := profile.Open(storePath(config))
	if err != nil {
		logger.Fatal("opening the profile store", zap.Error(err))
	}
	defer store.Close()

	prof, err := store.LoadProfile()
	if errors.Is(err, profile.ErrNotFound) {
		logger.Fatal("no profile saved",
			zap.String("hint", "run 'jobmatch profile set' first"),
		)
	}
	if err != nil {
		logger.Fatal("loading the profile", zap.Error(err))
	}
	if err := prof.Validate(); err != nil {
		logger.Fatal("stored profile is not usable", zap.Error(err))
	}

	vacancyText, err := resolveVacancyText(ctx, cmd)
	if errors.Is(err, page.ErrNoContent) {
		logger.Fatal(page.PastePlaceholder)
	}
	if err != nil {
		logger.Fatal("getting the vacancy text", zap.Error(err))
	}

	// Too little text means the page gave us navigation chrome, not a
	// posting. Refuse before spending a backend call on it.
	if utf8.RuneCountInString(vacancyText) < minVacancyRunes {
		logger.Fatal("vacancy text is too short to analyze",
			zap.Int("runes", utf8.RuneCountInString(vacancyText)),
			zap.Int("required", minVacancyRunes),
			zap.String("hint", "pass the full posting with --text or --selection"),
		)
	}

	logger.Info("vacancy text ready", zap.Int("runes", utf8.RuneCountInString(vacancyText)))

	autoApprove, _ := cmd.Flags().GetBool("yes")
	if !autoApprove {
		fmt.Printf("Извлечённый текст вакансии:\n%s\n\n", textPreview(vacancyText))

		prompt := promptui.Select{
			Label: "Send for analysis?",
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := prompt.Run()
		if err != nil {
			logger.Fatal("confirmation prompt failed", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("exiting", zap.String("reason", "canceled by user"))
			return
		}
	}

	analyzer, backendLog, err := buildAnalyzer(ctx, config, store, prof, logger)
	if err != nil {
		backendLog.Fatal("configuring the backend", zap.Error(err))
	}
	logger = backendLog

	requestID := uuid.NewString()
	logger.Info("sending the analysis request", zap.String("request_id", requestID))

	result, analyzeErr := analyzer.Analyze(ctx, vacancyText, prof)

	recordOutcome(ctx, config, logger, requestID, vacancyText, prof, result, analyzeErr)

	if analyzeErr != nil {
		if errors.Is(analyzeErr, gigachat.ErrAuthorization) {
			logger.Fatal("backend rejected the credentials",
				zap.Error(analyzeErr),
				zap.String("hint", "update the key with 'jobmatch profile set-key'"),
			)
		}
		logger.Fatal("analysis failed", zap.Error(analyzeErr))
	}

	raw, _ := cmd.Flags().GetBool("raw")
	if raw {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatal("encoding the result", zap.Error(err))
		}
		fmt.Println(string(encoded))
		return
	}

	fmt.Println()
	if err := render.Text(os.Stdout, result); err != nil {
		logger.Fatal("rendering the result", zap.Error(err))
	}
}

// resolveVacancyText picks the vacancy source from the flags. Direct text
// wins; otherwise the page is loaded and run through the extraction chain
// with the selection as its middle fallback.
func resolveVacancyText(ctx context.Context, cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("text")
	if strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text), nil
	}

	source, err := pageSource(cmd)
	if err != nil {
		return "", err
	}

	p, err := source.Load(ctx)
	if err != nil {
		return "", err
	}

	selection, _ := cmd.Flags().GetString("selection")
	p.Selection = strings.TrimSpace(selection)

	return p.Extract()
}

func pageSource(cmd *cobra.Command) (page.Source, error) {
	url, _ := cmd.Flags().GetString("url")
	file, _ := cmd.Flags().GetString("file")
	stdin, _ := cmd.Flags().GetBool("stdin")

	switch {
	case url != "":
		return page.NewURLSource(url), nil
	case file != "":
		return &page.FileSource{Path: file}, nil
	case stdin:
		return &page.ReaderSource{Reader: os.Stdin}, nil
	default:
		return nil, errors.New("a vacancy source is required: --url, --file, --stdin or --text")
	}
}

// buildAnalyzer wires the backend selected by the config: the proxy REST
// endpoint or one of the direct chat-completion providers. The returned
// logger carries the backend fields for the rest of the request.
func buildAnalyzer(ctx context.Context, config *Config, store *profile.Store, prof *profile.Profile, zl *zap.Logger) (ai.Analyzer, *zap.Logger, error) {
	mode := strings.TrimSpace(config.Mode)
	if mode == "" {
		mode = ModeDirect
	}

	switch mode {
	case ModeProxy:
		zl = logger.WithBackendFields(zl, mode, "", "")

		if config.Proxy == nil || config.Proxy.URL == "" {
			return nil, zl, errors.New("proxy mode requires proxy.url in the config")
		}

		// The profile's own credential wins over the configured key file.
		apiKey := prof.Credential
		if apiKey == "" && config.Proxy.APIKeyFile != "" {
			apiKey, _ = secrets.Load(secrets.Source{
				Name: "proxy api key",
				File: config.Proxy.APIKeyFile,
			})
		}

		return proxy.New(zl, config.Proxy.URL, apiKey), zl, nil

	case ModeDirect:
		provider := ProviderGigaChat
		if config.Direct != nil && config.Direct.Provider != "" {
			provider = config.Direct.Provider
		}

		zl = logger.WithBackendFields(zl, mode, provider, "")

		switch provider {
		case ProviderGigaChat:
			analyzer, err := buildGigaChat(config, store, zl)
			return analyzer, zl, err
		case ProviderGemini:
			analyzer, err := buildGemini(ctx, config, zl)
			return analyzer, zl, err
		default:
			return nil, zl, fmt.Errorf("unknown direct provider %q", provider)
		}

	default:
		return nil, zl, fmt.Errorf("unknown mode %q, expected %q or %q", mode, ModeProxy, ModeDirect)
	}
}

// buildGigaChat resolves the auth key with the stored settings record taking
// precedence over the key file, then assembles the client.
func buildGigaChat(config *Config, store *profile.Store, log *zap.Logger) (ai.Analyzer, error) {
	var gcConfig *GigaChatConfig
	if config.Direct != nil {
		gcConfig = config.Direct.GigaChat
	}
	if gcConfig == nil {
		gcConfig = &GigaChatConfig{}
	}

	authKey := ""
	if settings, err := store.LoadSettings(); err == nil && settings.AuthKey != "" {
		authKey = settings.AuthKey
	} else {
		authKey, err = secrets.Load(secrets.Source{
			Name: "gigachat auth key",
			File: gcConfig.AuthKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", gigachat.ErrAuthorization, err)
		}
	}

	client := gigachat.New(log, authKey, gcConfig.Model, gcConfig.Scope)
	if gcConfig.OAuthURL != "" {
		client.OAuthURL = gcConfig.OAuthURL
	}
	if gcConfig.APIURL != "" {
		client.APIURL = gcConfig.APIURL
	}

	return gigachat.NewAnalyzer(client, log), nil
}

func buildGemini(ctx context.Context, config *Config, log *zap.Logger) (ai.Analyzer, error) {
	var gmConfig *GeminiConfig
	if config.Direct != nil {
		gmConfig = config.Direct.Gemini
	}
	if gmConfig == nil {
		gmConfig = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: gmConfig.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gmConfig.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewAnalyzer(generator, log), nil
}

// recordOutcome writes the request to the history store and the jsonl logs.
// Both are best-effort: a failed write is logged and the analysis result
// still reaches the user.
func recordOutcome(ctx context.Context, config *Config, log *zap.Logger, requestID, vacancyText string, prof *profile.Profile, result *analysis.Result, analyzeErr error) {
	status := history.StatusOK
	errText := ""
	if analyzeErr != nil {
		status = history.StatusError
		errText = analyzeErr.Error()
	}

	resultJSON := ""
	if result != nil {
		if encoded, err := json.Marshal(result); err == nil {
			resultJSON = string(encoded)
		}
	}

	if path := historyPath(config); path != "" {
		if store, err := history.Open(path); err != nil {
			log.Warn("opening the history store failed", zap.Error(err))
		} else {
			defer store.Close()
			if err := store.Record(ctx, history.Entry{
				RequestID:   requestID,
				VacancyText: vacancyText,
				ResumeText:  prof.ResumeText,
				ResultJSON:  resultJSON,
				Status:      status,
				Error:       errText,
			}); err != nil {
				log.Warn("recording the request failed", zap.Error(err))
			}
		}
	}

	metaPath, fullPath := logPaths(config)
	writer := history.NewJSONLWriter(log, metaPath, fullPath)
	writer.WriteMeta(history.MetaRecord{
		RequestID:    requestID,
		VacancyRunes: utf8.RuneCountInString(vacancyText),
		ResumeRunes:  utf8.RuneCountInString(prof.ResumeText),
		Status:       status,
		Error:        errText,
	})
	writer.WriteFull(history.FullRecord{
		RequestID:   requestID,
		VacancyText: vacancyText,
		ResumeText:  prof.ResumeText,
		Result:      json.RawMessage(resultJSON),
		Status:      status,
		Error:       errText,
	})
}

func storePath(config *Config) string {
	if config.Store != nil && config.Store.Path != "" {
		return config.Store.Path
	}
	return viper.GetString("store.path")
}

func historyPath(config *Config) string {
	if config.History != nil && config.History.Path != "" {
		return config.History.Path
	}
	return viper.GetString("history.path")
}

func logPaths(config *Config) (string, string) {
	if config.History == nil {
		return "", ""
	}
	return config.History.RequestLog, config.History.FullLog
}

func textPreview(text string) string {
	return logger.TruncateForLog(text, previewRunes)
}
