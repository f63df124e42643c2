package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/analystexe/jobmatch/internal/logger"
	"github.com/analystexe/jobmatch/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the saved candidate profile and backend key",
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save the resume and preferences, replacing the previous profile",
	Run: func(cmd *cobra.Command, _ []string) {
		profileSet(cmd)
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved profile",
	Run: func(cmd *cobra.Command, _ []string) {
		profileShow(cmd)
	},
}

var profileSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Save the direct-mode authorization key",
	Run: func(cmd *cobra.Command, _ []string) {
		profileSetKey(cmd)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd, profileShowCmd, profileSetKeyCmd)

	profileSetCmd.Flags().String("resume-file", "", "plain-text file with the resume")
	profileSetCmd.Flags().String("resume-text", "", "resume passed inline")
	profileSetCmd.Flags().String("credential", "", "proxy-mode bearer secret stored with the profile")
	profileSetCmd.Flags().String("salary-min", "", "minimum acceptable salary")
	profileSetCmd.Flags().StringSlice("work-format", nil, "acceptable work formats: remote, hybrid, office")
	profileSetCmd.Flags().StringSlice("red-flag", nil, "red flag to watch for in postings")
	profileSetCmd.Flags().StringSlice("must-have", nil, "condition the posting must offer")

	profileSetKeyCmd.Flags().String("file", "", "file with the authorization key (prompted interactively when unset)")
}

func openStore(config *Config, log *zap.Logger) *profile.Store {
	store, err := profile.Open(storePath(config))
	if err != nil {
		log.Fatal("opening the profile store", zap.Error(err))
	}
	return store
}

func commandSetup() (*Config, *zap.Logger) {
	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		config = &Config{}
	}

	return config, zl
}

func profileSet(cmd *cobra.Command) {
	config, zl := commandSetup()

	store := openStore(config, zl)
	defer store.Close()

	var p *profile.Profile
	var err error
	if useInteractiveEntry(cmd) {
		p, err = promptForProfile()
		if err != nil {
			zl.Fatal("interactive profile entry failed", zap.Error(err))
		}
	} else {
		p, err = profileFromFlags(cmd)
		if err != nil {
			zl.Fatal("reading the profile flags", zap.Error(err))
		}
	}

	credential, _ := cmd.Flags().GetString("credential")
	p.Credential = strings.TrimSpace(credential)

	if err := store.SaveProfile(p); err != nil {
		zl.Fatal("saving the profile", zap.Error(err))
	}

	zl.Info("profile saved", zap.Strings("work_formats", p.FormatLabels()))
}

// useInteractiveEntry reports whether profile set should prompt for the
// profile instead of reading it from flags. Either resume flag opts into
// the flag-driven path.
func useInteractiveEntry(cmd *cobra.Command) bool {
	file, _ := cmd.Flags().GetString("resume-file")
	inline, _ := cmd.Flags().GetString("resume-text")
	return strings.TrimSpace(file) == "" && strings.TrimSpace(inline) == ""
}

func profileFromFlags(cmd *cobra.Command) (*profile.Profile, error) {
	resumeText, err := resolveResumeText(cmd)
	if err != nil {
		return nil, err
	}

	salaryMin, _ := cmd.Flags().GetString("salary-min")
	rawFormats, _ := cmd.Flags().GetStringSlice("work-format")
	redFlags, _ := cmd.Flags().GetStringSlice("red-flag")
	mustHave, _ := cmd.Flags().GetStringSlice("must-have")

	formats := make([]profile.WorkFormat, 0, len(rawFormats))
	for _, raw := range rawFormats {
		format, err := profile.ParseWorkFormat(raw)
		if err != nil {
			return nil, err
		}
		formats = append(formats, format)
	}

	return &profile.Profile{
		ResumeText:  resumeText,
		SalaryMin:   strings.TrimSpace(salaryMin),
		WorkFormats: formats,
		RedFlags:    redFlags,
		MustHave:    mustHave,
	}, nil
}

func resolveResumeText(cmd *cobra.Command) (string, error) {
	inline, _ := cmd.Flags().GetString("resume-text")
	if strings.TrimSpace(inline) != "" {
		return strings.TrimSpace(inline), nil
	}

	path, _ := cmd.Flags().GetString("resume-file")
	if path == "" {
		return "", errors.New("either --resume-file or --resume-text is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

const promptFormatsDone = "Готово"

// promptForProfile collects the whole profile interactively: resume file
// path, salary, work formats, then the comma-separated preference lists.
func promptForProfile() (*profile.Profile, error) {
	pathPrompt := promptui.Prompt{Label: "Путь к файлу с резюме"}
	path, err := pathPrompt.Run()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("reading resume file: %w", err)
	}

	salaryPrompt := promptui.Prompt{Label: "Минимальная зарплата (пусто, если не важна)"}
	salary, err := salaryPrompt.Run()
	if err != nil {
		return nil, err
	}

	formats, err := promptWorkFormats()
	if err != nil {
		return nil, err
	}

	redPrompt := promptui.Prompt{Label: "Red flags через запятую (пусто, если нет)"}
	red, err := redPrompt.Run()
	if err != nil {
		return nil, err
	}

	mustPrompt := promptui.Prompt{Label: "Must have через запятую (пусто, если нет)"}
	must, err := mustPrompt.Run()
	if err != nil {
		return nil, err
	}

	return &profile.Profile{
		ResumeText:  strings.TrimSpace(string(data)),
		SalaryMin:   strings.TrimSpace(salary),
		WorkFormats: formats,
		RedFlags:    splitList(red),
		MustHave:    splitList(must),
	}, nil
}

// promptWorkFormats selects the accepted formats one at a time until the
// user picks the done item or exhausts the choices.
func promptWorkFormats() ([]profile.WorkFormat, error) {
	var chosen []profile.WorkFormat
	for {
		items := append(remainingFormatLabels(chosen), promptFormatsDone)

		sel := promptui.Select{
			Label: "Формат работы",
			Items: items,
		}
		_, choice, err := sel.Run()
		if err != nil {
			return nil, err
		}
		if choice == promptFormatsDone {
			return chosen, nil
		}

		format, ok := formatByLabel(choice)
		if !ok {
			return nil, fmt.Errorf("unknown work format choice %q", choice)
		}
		chosen = append(chosen, format)

		if len(remainingFormatLabels(chosen)) == 0 {
			return chosen, nil
		}
	}
}

var promptableFormats = []profile.WorkFormat{
	profile.WorkFormatRemote,
	profile.WorkFormatHybrid,
	profile.WorkFormatOffice,
}

func formatByLabel(label string) (profile.WorkFormat, bool) {
	for _, format := range promptableFormats {
		if format.Label() == label {
			return format, true
		}
	}
	return "", false
}

func remainingFormatLabels(chosen []profile.WorkFormat) []string {
	labels := make([]string, 0, len(promptableFormats))
	for _, format := range promptableFormats {
		taken := false
		for _, c := range chosen {
			if c == format {
				taken = true
				break
			}
		}
		if !taken {
			labels = append(labels, format.Label())
		}
	}
	return labels
}

// splitList turns comma-separated prompt input into a trimmed list.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func profileShow(_ *cobra.Command) {
	config, zl := commandSetup()

	store := openStore(config, zl)
	defer store.Close()

	p, err := store.LoadProfile()
	if errors.Is(err, profile.ErrNotFound) {
		zl.Fatal("no profile saved", zap.String("hint", "run 'jobmatch profile set' first"))
	}
	if err != nil {
		zl.Fatal("loading the profile", zap.Error(err))
	}

	fmt.Printf("Резюме:\n%s\n\n", p.ResumeText)
	if p.SalaryMin != "" {
		fmt.Printf("Минимальная зарплата: %s\n", p.SalaryMin)
	}
	if labels := p.FormatLabels(); len(labels) > 0 {
		fmt.Printf("Формат работы: %s\n", strings.Join(labels, ", "))
	}
	if len(p.RedFlags) > 0 {
		fmt.Printf("Red flags: %s\n", strings.Join(p.RedFlags, ", "))
	}
	if len(p.MustHave) > 0 {
		fmt.Printf("Must have: %s\n", strings.Join(p.MustHave, ", "))
	}
	if p.Credential != "" {
		fmt.Println("Ключ прокси: сохранён")
	}
}

func profileSetKey(cmd *cobra.Command) {
	config, zl := commandSetup()

	store := openStore(config, zl)
	defer store.Close()

	path, _ := cmd.Flags().GetString("file")

	var key string
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			zl.Fatal("reading the key file", zap.Error(err))
		}
		key = strings.TrimSpace(string(data))
	} else {
		prompt := promptui.Prompt{
			Label: "Authorization key",
			Mask:  '*',
		}
		entered, err := prompt.Run()
		if err != nil {
			zl.Fatal("key prompt failed", zap.Error(err))
		}
		key = strings.TrimSpace(entered)
	}

	if key == "" {
		zl.Fatal("the key must not be empty")
	}

	if err := store.SaveSettings(&profile.Settings{AuthKey: key}); err != nil {
		zl.Fatal("saving the key", zap.Error(err))
	}

	zl.Info("authorization key saved")
}
