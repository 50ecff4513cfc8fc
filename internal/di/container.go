package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"smart-apply/internal/application/port/input"
	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/infrastructure/browser/rod"
	"smart-apply/internal/infrastructure/diagnostics"
	"smart-apply/internal/infrastructure/env"
	"smart-apply/internal/infrastructure/llm/gemini"
	"smart-apply/internal/infrastructure/llm/openrouter"
	"smart-apply/internal/infrastructure/logger"
	"smart-apply/internal/infrastructure/resumes"
	"smart-apply/internal/infrastructure/selectors"
	"smart-apply/internal/infrastructure/storage/sqlite"
	"smart-apply/internal/infrastructure/userinteraction"
	"smart-apply/internal/usecase/fieldmatch"
	"smart-apply/internal/usecase/matching"
	"smart-apply/internal/usecase/selector"
	"smart-apply/internal/usecase/session"
	"smart-apply/internal/usecase/timing"
	"smart-apply/internal/usecase/wizard"
)

const (
	dbFile                 = "smart-apply.db"
	defaultOpenRouterModel = "google/gemini-2.0-flash-001"
)

// Config is the settings object built once at startup by the cli package.
type Config struct {
	DataDir string
	EnvDir  string
	LogName string
	Debug   bool
	JSON    bool

	DryRun      bool
	Headless    bool
	NoSandbox   bool
	HumanTyping bool

	Session session.Config
	Wizard  wizard.Config

	SelectorsFile string
	Answers       entity.AnswerSet

	// LLMProvider is "openrouter", "gemini", "keyword" or empty for the first one with a key.
	LLMProvider   string
	LLMMaxRetries int
}

type Container struct {
	Logger  *logger.LoggerAdapter
	Env     *env.EnvService
	DB      *sql.DB
	Ledger  *sqlite.Ledger
	Tracker *sqlite.UnfilledTracker
	Resumes *resumes.Store
	UI      *userinteraction.ConsoleUserInteraction

	Browser output.BrowserPort
	Session input.SessionRunner

	cfg   Config
	clock timing.Clock
}

// NewContainer builds the offline part of the graph: logging, secrets, the
// ledger database, the résumé store and the console. The browser session is
// built separately by BuildSession.
func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.LogName == "" {
		cfg.LogName = "smart-apply"
	}

	log, err := logger.NewLoggerAdapter(logger.Options{
		JSON:  cfg.JSON,
		Debug: cfg.Debug,
		Dir:   filepath.Join(cfg.DataDir, "logs"),
		Name:  cfg.LogName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{
		Logger: log,
		UI:     userinteraction.NewConsoleUserInteraction(),
		cfg:    cfg,
		clock:  timing.RealClock(),
	}

	c.Env, err = env.NewEnvService(cfg.EnvDir, log)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	c.DB, err = sqlite.Open(filepath.Join(cfg.DataDir, dbFile), sqlite.WithMkdirAll())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	c.Ledger = sqlite.NewLedger(c.DB, c.clock)
	c.Tracker = sqlite.NewUnfilledTracker(c.DB, c.clock)

	c.Resumes, err = resumes.NewStore(ctx, filepath.Join(cfg.DataDir, "resumes"), log.WithField("component", "resumes"))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load resumes: %w", err)
	}

	return c, nil
}

// BuildSession launches the browser and assembles the session controller.
// A browser launch failure is fatal.
func (c *Container) BuildSession(ctx context.Context) error {
	catalog, err := selectors.Load(c.cfg.SelectorsFile)
	if err != nil {
		return fmt.Errorf("failed to load selector catalog: %w", err)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = c.cfg.Headless
	browserCfg.NoSandbox = c.cfg.NoSandbox
	browserCfg.UserDataDir = filepath.Join(c.cfg.DataDir, "chrome_profile")
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}
	c.Browser = browser
	page := browser.Page()

	log := c.Logger
	sim := timing.New(timing.DefaultConfig(), c.clock, nil, log.WithField("component", "timing"))
	resolver := selector.New(c.clock, log.WithField("component", "selector"))
	diag := diagnostics.NewWriter(filepath.Join(c.cfg.DataDir, "diagnostics"), c.clock, log.WithField("component", "diagnostics"))

	fields := fieldmatch.New(resolver, sim, catalog, c.cfg.Answers, fieldmatch.Options{
		HumanTyping: c.cfg.HumanTyping,
		Pointer:     page,
	}, log.WithField("component", "fieldmatch"))

	wizardCfg := c.cfg.Wizard
	wizardCfg.DryRun = c.cfg.DryRun
	wiz := wizard.New(page, resolver, fields, sim, catalog, c.Tracker, diag, wizardCfg, log.WithField("component", "wizard"))

	matcher, err := c.matchSelector(ctx)
	if err != nil {
		return err
	}

	sessionCfg := c.cfg.Session
	sessionCfg.Headless = c.cfg.Headless
	c.Session = session.New(session.Deps{
		Page:     page,
		Resolver: resolver,
		Sim:      sim,
		Catalog:  catalog,
		Resumes:  c.Resumes,
		Matcher:  matcher,
		Wizard:   wiz,
		Ledger:   c.Ledger,
		Diag:     diag,
		UI:       c.UI,
	}, sessionCfg, log)

	log.Info("Session ready",
		"dry_run", c.cfg.DryRun,
		"headless", c.cfg.Headless,
		"daily_cap", sessionCfg.DailyCap,
		"queries", sessionCfg.SearchQueries)
	return nil
}

// matchSelector picks the LLM backend by configured provider, or by whichever
// API key is present. Without a key it falls back to keyword overlap.
func (c *Container) matchSelector(ctx context.Context) (output.MatchSelector, error) {
	log := c.Logger.WithField("component", "matching")

	provider := c.cfg.LLMProvider
	if provider == "" {
		switch {
		case c.Env.Get("OPENROUTER_API_KEY") != "":
			provider = "openrouter"
		case c.Env.Get("GEMINI_API_KEY") != "":
			provider = "gemini"
		default:
			log.Warn("No LLM API key configured, matching resumes by keywords")
			provider = "keyword"
		}
	}

	switch provider {
	case "openrouter":
		key := c.Env.Get("OPENROUTER_API_KEY")
		if key == "" {
			return nil, errors.New("OPENROUTER_API_KEY is required for the openrouter provider")
		}
		cfg := openrouter.DefaultConfig(key, c.Env.GetWithDefault("OPENROUTER_MODEL", defaultOpenRouterModel))
		cfg.Logger = log
		return matching.NewLLMSelector(openrouter.NewOpenRouterAdapter(cfg), log), nil
	case "gemini":
		llm, err := gemini.NewAdapter(ctx, gemini.Config{
			APIKey:     c.Env.Get("GEMINI_API_KEY"),
			Model:      c.Env.Get("GEMINI_MODEL"),
			MaxRetries: c.cfg.LLMMaxRetries,
		}, c.clock, log.WithField("provider", "gemini"))
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return matching.NewLLMSelector(llm, log), nil
	case "keyword":
		return matching.NewKeywordSelector(log), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("Failed to close ledger", "error", err)
		}
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}

// Answers turns the configured profile, radio answers and dropdown rules into an
// AnswerSet. Profile keys are applied longest first so "first name" wins over "name".
func Answers(profile, answers map[string]string, dropdowns []entity.DropdownRule) entity.AnswerSet {
	set := entity.AnswerSet{Dropdowns: dropdowns}
	for _, k := range longestFirst(profile) {
		set.Bindings = append(set.Bindings, entity.FieldBinding{Key: k, Value: profile[k]})
	}
	for _, q := range longestFirst(answers) {
		set.Answers = append(set.Answers, entity.QuestionAnswer{Question: q, Answer: answers[q]})
	}
	return set
}

func longestFirst(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
