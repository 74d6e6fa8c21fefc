package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ManualCompany is a hand-entered company in the config file.
type ManualCompany struct {
	Name     string `yaml:"name"`
	Website  string `yaml:"website"`
	Platform string `yaml:"platform"`
	Slug     string `yaml:"slug"`
}

// Profile is the fixed candidate context handed to the arbiter stage.
type Profile struct {
	Summary     string   `yaml:"summary"`
	Skills      []string `yaml:"skills"`
	Constraints []string `yaml:"constraints"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Scrape struct {
		Workers           int     `yaml:"workers"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		MaxAttempts       int     `yaml:"max_attempts"`
		BackoffInitialMS  int     `yaml:"backoff_initial_ms"`
	} `yaml:"scrape"`

	Sources struct {
		Ashby           SourceConfig `yaml:"ashby"`
		Greenhouse      SourceConfig `yaml:"greenhouse"`
		Lever           SourceConfig `yaml:"lever"`
		SmartRecruiters SourceConfig `yaml:"smartrecruiters"`
	} `yaml:"sources"`

	Discovery struct {
		Simplify struct {
			Enabled bool   `yaml:"enabled"`
			URL     string `yaml:"url"`
		} `yaml:"simplify"`
		YC struct {
			Enabled bool   `yaml:"enabled"`
			URL     string `yaml:"url"`
		} `yaml:"yc"`
		A16Z struct {
			Enabled bool   `yaml:"enabled"`
			URL     string `yaml:"url"`
		} `yaml:"a16z"`
		Manual struct {
			Companies []ManualCompany `yaml:"companies"`
		} `yaml:"manual"`
	} `yaml:"discovery"`

	Funnel struct {
		AcceptThreshold float64 `yaml:"accept_threshold"`
		RejectThreshold float64 `yaml:"reject_threshold"`
		TriageBatchSize int     `yaml:"triage_batch_size"`
		ReviewWorkers   int     `yaml:"review_workers"`

		// DomesticSignals are the location markers that rank a posting as
		// domestic. Leaving the key out keeps the stock list; setting it
		// replaces the list wholesale.
		DomesticSignals []string `yaml:"domestic_signals"`
	} `yaml:"funnel"`

	AI struct {
		TriageModel    string `yaml:"triage_model"`
		ArbiterModel   string `yaml:"arbiter_model"`
		SlugModel      string `yaml:"slug_model"`
		MaxLogLength   int    `yaml:"max_log_length"`
		KeyringAccount string `yaml:"keyring_account"`
	} `yaml:"ai"`

	Dedup struct {
		FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
	} `yaml:"dedup"`

	Profile Profile `yaml:"profile"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

type SourceConfig struct {
	Enabled bool `yaml:"enabled"`
}

func (c *Config) applyDefaults() {
	if c.Scrape.Workers <= 0 {
		c.Scrape.Workers = 8
	}
	if c.Scrape.RequestsPerSecond <= 0 {
		c.Scrape.RequestsPerSecond = 1.0
	}
	if c.Scrape.Burst <= 0 {
		c.Scrape.Burst = 2
	}
	if c.Scrape.MaxAttempts <= 0 {
		c.Scrape.MaxAttempts = 3
	}
	if c.Scrape.BackoffInitialMS <= 0 {
		c.Scrape.BackoffInitialMS = 500
	}
	if c.Funnel.AcceptThreshold == 0 {
		c.Funnel.AcceptThreshold = 0.7
	}
	if c.Funnel.RejectThreshold == 0 {
		c.Funnel.RejectThreshold = 0.5
	}
	if c.Funnel.TriageBatchSize <= 0 {
		c.Funnel.TriageBatchSize = 100
	}
	if c.Funnel.ReviewWorkers <= 0 {
		c.Funnel.ReviewWorkers = 2
	}
	if len(c.Funnel.DomesticSignals) == 0 {
		c.Funnel.DomesticSignals = []string{
			"united states", "usa", "us", "remote",
			"new york", "san francisco", "seattle", "austin", "boston",
		}
	}
	if c.AI.TriageModel == "" {
		c.AI.TriageModel = "gemini-2.5-flash"
	}
	// ArbiterModel has no default: blanking it in the config turns the
	// expensive stage off and routes the undecided band to human review.
	if c.AI.SlugModel == "" {
		c.AI.SlugModel = c.AI.TriageModel
	}
	if c.AI.MaxLogLength <= 0 {
		c.AI.MaxLogLength = 200
	}
	if c.Dedup.FuzzyThreshold == 0 {
		c.Dedup.FuzzyThreshold = 0.85
	}
}
