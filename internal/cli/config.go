package cli

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"smart-apply/internal/di"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/usecase/session"
	"smart-apply/internal/usecase/wizard"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const envPrefix = "SMART_APPLY"

type Config struct {
	DataDir  string `mapstructure:"data-dir"`
	Debug    bool   `mapstructure:"debug"`
	JSON     bool   `mapstructure:"json"`
	DryRun   bool   `mapstructure:"dry-run"`
	Headless bool   `mapstructure:"headless"`

	Search    *SearchConfig    `mapstructure:"search"`
	Wizard    *WizardConfig    `mapstructure:"wizard"`
	Browser   *BrowserConfig   `mapstructure:"browser"`
	Selectors *SelectorsConfig `mapstructure:"selectors"`
	AI        *AIConfig        `mapstructure:"ai"`

	// Profile maps a form label key ("first name", "phone") to the text typed into it.
	Profile map[string]string `mapstructure:"profile"`
	// Answers maps a radio question fragment to the option to pick.
	Answers   map[string]string `mapstructure:"answers"`
	Dropdowns []DropdownConfig  `mapstructure:"dropdowns"`
}

type SearchConfig struct {
	Queries         []string `mapstructure:"queries"`
	Locations       []string `mapstructure:"locations"`
	DailyCap        int      `mapstructure:"daily-cap"`
	MaxJobsPerQuery int      `mapstructure:"max-jobs-per-query"`
	MaxJobs         int      `mapstructure:"max-jobs"`
}

type WizardConfig struct {
	MaxSteps    int           `mapstructure:"max-steps"`
	ModalWait   time.Duration `mapstructure:"modal-wait"`
	ClickWait   time.Duration `mapstructure:"click-wait"`
	HumanTyping bool          `mapstructure:"human-typing"`
}

type BrowserConfig struct {
	NoSandbox bool `mapstructure:"no-sandbox"`
}

type SelectorsConfig struct {
	File string `mapstructure:"file"`
}

type AIConfig struct {
	Provider   string `mapstructure:"provider"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type DropdownConfig struct {
	Keyword string `mapstructure:"keyword"`
	Value   string `mapstructure:"value"`
}

// legacyEnv are the plain variable names the bot has always honoured.
var legacyEnv = map[string]string{
	"dry-run":          "DRY_RUN",
	"headless":         "HEADLESS_MODE",
	"search.queries":   "SEARCH_QUERIES",
	"search.locations": "PREFERRED_LOCATIONS",
	"search.daily-cap": "MAX_APPLICATIONS_PER_DAY",
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("data-dir", "data")
	v.SetDefault("debug", false)
	v.SetDefault("json", false)
	v.SetDefault("dry-run", true)
	v.SetDefault("headless", false)

	v.SetDefault("search.queries", []string{
		"Full Stack Intern",
		"Frontend Intern",
		"Web Developer Intern",
		"React Developer Intern",
		"Node.js Intern",
	})
	v.SetDefault("search.locations", []string{"Chennai", "India"})
	v.SetDefault("search.daily-cap", 40)
	v.SetDefault("search.max-jobs-per-query", 25)
	v.SetDefault("search.max-jobs", 0)

	v.SetDefault("wizard.max-steps", 10)
	v.SetDefault("wizard.modal-wait", 5*time.Second)
	v.SetDefault("wizard.click-wait", 5*time.Second)
	v.SetDefault("wizard.human-typing", true)

	v.SetDefault("browser.no-sandbox", false)
	v.SetDefault("selectors.file", "")
	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.max-retries", 3)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, name := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
		// the prefixed name is listed first so it wins over the legacy one
		_ = v.BindEnv(key, prefixed, name)
	}

	return v
}

// readConfig reads file, or smart-apply.yaml from the working directory when
// file is empty. Only an explicitly named file has to exist.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		commaListHook(),
	)))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// commaListHook decodes "a, b,,c" into ["a" "b" "c"], which is how lists arrive from the environment.
func commaListHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}
		var out []string
		for _, part := range strings.Split(data.(string), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
}

func (c *Config) validate() error {
	if len(c.Search.Queries) == 0 {
		return errors.New("search.queries must name at least one query")
	}
	if c.Search.DailyCap < 0 {
		return fmt.Errorf("search.daily-cap must not be negative, got %d", c.Search.DailyCap)
	}
	for i, d := range c.Dropdowns {
		if strings.TrimSpace(d.Keyword) == "" {
			return fmt.Errorf("dropdowns[%d]: keyword is required", i)
		}
	}
	return nil
}

// container maps the loaded settings onto the composition root's settings object.
func (c *Config) container(logName string) di.Config {
	dropdowns := make([]entity.DropdownRule, 0, len(c.Dropdowns))
	for _, d := range c.Dropdowns {
		dropdowns = append(dropdowns, entity.DropdownRule{Keyword: d.Keyword, Value: d.Value})
	}

	return di.Config{
		DataDir:     c.DataDir,
		LogName:     logName,
		Debug:       c.Debug,
		JSON:        c.JSON,
		DryRun:      c.DryRun,
		Headless:    c.Headless,
		NoSandbox:   c.Browser.NoSandbox,
		HumanTyping: c.Wizard.HumanTyping,
		Session: session.Config{
			SearchQueries:   c.Search.Queries,
			Locations:       c.Search.Locations,
			DailyCap:        c.Search.DailyCap,
			MaxJobsPerQuery: c.Search.MaxJobsPerQuery,
			MaxJobs:         c.Search.MaxJobs,
		},
		Wizard: wizard.Config{
			MaxSteps:     c.Wizard.MaxSteps,
			ModalWait:    c.Wizard.ModalWait,
			ClickTimeout: c.Wizard.ClickWait,
		},
		SelectorsFile: c.Selectors.File,
		Answers:       di.Answers(c.Profile, c.Answers, dropdowns),
		LLMProvider:   strings.ToLower(strings.TrimSpace(c.AI.Provider)),
		LLMMaxRetries: c.AI.MaxRetries,
	}
}
