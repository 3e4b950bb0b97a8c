package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration. Components receive the
// slice of it they need at construction; there is no package-level state.
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Mail      MailConfig      `yaml:"mail" envconfig:"MAIL"`
	Aggregate AggregateConfig `yaml:"aggregate" envconfig:"AGGREGATE"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
}

// PathsConfig locates every persisted artifact.
type PathsConfig struct {
	BaseDir        string `yaml:"base_dir" envconfig:"BASE_DIR" default:"data" validate:"required"`
	ProcessedDir   string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" default:"data/processed" validate:"required"`
	TempZipDir     string `yaml:"temp_zip_dir" envconfig:"TEMP_ZIP_DIR" default:"data/tmp_zip" validate:"required"`
	MasterColumns  string `yaml:"master_columns" envconfig:"MASTER_COLUMNS" default:"data/NPAI colonnes.xlsx" validate:"required"`
	MasterFull     string `yaml:"master_full" envconfig:"MASTER_FULL" default:"data/NPAI complet.xlsx" validate:"required"`
	LedgerFile     string `yaml:"ledger_file" envconfig:"LEDGER_FILE" default:"data/Consigne_NPAI.xlsx" validate:"required"`
	CostReportFile string `yaml:"cost_report_file" envconfig:"COST_REPORT_FILE" default:"data/Frais documents.xlsx" validate:"required"`
	ChartImage     string `yaml:"chart_image" envconfig:"CHART_IMAGE" default:"data/Evolution_traitements.png"`
	LogsDir        string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// MailConfig configures the shared-mailbox attachment feed.
type MailConfig struct {
	Mailbox         string `yaml:"mailbox" envconfig:"MAILBOX" validate:"omitempty,email"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	CredentialsJSON string `yaml:"credentials_json" envconfig:"CREDENTIALS_JSON"`
	Query           string `yaml:"query" envconfig:"QUERY" default:"has:attachment filename:zip"`
}

// AggregateConfig drives the ingestion and consolidation pass.
type AggregateConfig struct {
	// RequiredColumns is the logical column subset kept in the restricted
	// master projection.
	RequiredColumns []string `yaml:"required_columns" envconfig:"REQUIRED_COLUMNS" default:"ENTITÉ,TYPE DE DOCUMENT,SCS-CONTRAT,DATE RÉCEPTION,DATE TRAITEMENT PND" validate:"min=1"`
	// ContractColumn and ProcessDateColumn key the per-contract dedup.
	ContractColumn    string `yaml:"contract_column" envconfig:"CONTRACT_COLUMN" default:"SCS-CONTRAT" validate:"required"`
	ProcessDateColumn string `yaml:"process_date_column" envconfig:"PROCESS_DATE_COLUMN" default:"DATE TRAITEMENT PND" validate:"required"`
	// ReferenceDate anchors the "closest date wins" contract dedup.
	ReferenceDate string `yaml:"reference_date" envconfig:"REFERENCE_DATE" default:"2020-01-01" validate:"required,datetime=2006-01-02"`
}

// ReportConfig drives the cost & volume report.
type ReportConfig struct {
	YearOne      int    `yaml:"year_one" envconfig:"YEAR_ONE" default:"2024" validate:"required"`
	YearOneFile  string `yaml:"year_one_file" envconfig:"YEAR_ONE_FILE" default:"data/SFR-concatenation.xlsx" validate:"required"`
	YearOneSheet string `yaml:"year_one_sheet" envconfig:"YEAR_ONE_SHEET" default:"20240101-20241216"`
	YearTwo      int    `yaml:"year_two" envconfig:"YEAR_TWO" default:"2025" validate:"required,gtfield=YearOne"`
	YearTwoFile  string `yaml:"year_two_file" envconfig:"YEAR_TWO_FILE" default:"data/NPAI complet.xlsx" validate:"required"`
	// YearTwoSheet left empty means sheet auto-detection by column resolution.
	YearTwoSheet string `yaml:"year_two_sheet" envconfig:"YEAR_TWO_SHEET"`
	// Tariffs in euro per handled document, keyed by normalized type.
	Tariffs map[string]float64 `yaml:"tariffs" envconfig:"TARIFFS" default:"FACTURE:0.75,RELANCE:0.75,COURRIER:0.81,DUPLICATA:0.75" validate:"min=1"`
	// MonthLabels become report column headers and chart axis labels.
	MonthLabels []string `yaml:"month_labels" envconfig:"MONTH_LABELS" default:"Janvier,Février,Mars,Avril,Mai,Juin,Juillet,Août,Septembre,Octobre,Novembre,Décembre" validate:"len=12"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/npai.log"`
}

// Load reads configuration from environment variables (prefix NPAI) layered
// over an optional YAML file, then validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("NPAI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := os.Getenv("NPAI_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs overlays explicit file values where the environment left the
// default in place. Environment wins for anything set on both sides.
func mergeConfigs(fileConfig, envConfig Config) Config {
	def := defaults()
	merged := envConfig

	mergeString := func(env, file, def string) string {
		if env == def && file != "" {
			return file
		}
		return env
	}

	merged.Paths.BaseDir = mergeString(envConfig.Paths.BaseDir, fileConfig.Paths.BaseDir, def.Paths.BaseDir)
	merged.Paths.ProcessedDir = mergeString(envConfig.Paths.ProcessedDir, fileConfig.Paths.ProcessedDir, def.Paths.ProcessedDir)
	merged.Paths.TempZipDir = mergeString(envConfig.Paths.TempZipDir, fileConfig.Paths.TempZipDir, def.Paths.TempZipDir)
	merged.Paths.MasterColumns = mergeString(envConfig.Paths.MasterColumns, fileConfig.Paths.MasterColumns, def.Paths.MasterColumns)
	merged.Paths.MasterFull = mergeString(envConfig.Paths.MasterFull, fileConfig.Paths.MasterFull, def.Paths.MasterFull)
	merged.Paths.LedgerFile = mergeString(envConfig.Paths.LedgerFile, fileConfig.Paths.LedgerFile, def.Paths.LedgerFile)
	merged.Paths.CostReportFile = mergeString(envConfig.Paths.CostReportFile, fileConfig.Paths.CostReportFile, def.Paths.CostReportFile)
	merged.Paths.ChartImage = mergeString(envConfig.Paths.ChartImage, fileConfig.Paths.ChartImage, def.Paths.ChartImage)
	merged.Paths.LogsDir = mergeString(envConfig.Paths.LogsDir, fileConfig.Paths.LogsDir, def.Paths.LogsDir)

	merged.Mail.Mailbox = mergeString(envConfig.Mail.Mailbox, fileConfig.Mail.Mailbox, "")
	merged.Mail.CredentialsFile = mergeString(envConfig.Mail.CredentialsFile, fileConfig.Mail.CredentialsFile, "")
	merged.Mail.CredentialsJSON = mergeString(envConfig.Mail.CredentialsJSON, fileConfig.Mail.CredentialsJSON, "")
	merged.Mail.Query = mergeString(envConfig.Mail.Query, fileConfig.Mail.Query, def.Mail.Query)

	merged.Aggregate.ContractColumn = mergeString(envConfig.Aggregate.ContractColumn, fileConfig.Aggregate.ContractColumn, def.Aggregate.ContractColumn)
	merged.Aggregate.ProcessDateColumn = mergeString(envConfig.Aggregate.ProcessDateColumn, fileConfig.Aggregate.ProcessDateColumn, def.Aggregate.ProcessDateColumn)
	merged.Aggregate.ReferenceDate = mergeString(envConfig.Aggregate.ReferenceDate, fileConfig.Aggregate.ReferenceDate, def.Aggregate.ReferenceDate)
	if len(fileConfig.Aggregate.RequiredColumns) > 0 {
		merged.Aggregate.RequiredColumns = fileConfig.Aggregate.RequiredColumns
	}

	merged.Report.YearOneFile = mergeString(envConfig.Report.YearOneFile, fileConfig.Report.YearOneFile, def.Report.YearOneFile)
	merged.Report.YearOneSheet = mergeString(envConfig.Report.YearOneSheet, fileConfig.Report.YearOneSheet, def.Report.YearOneSheet)
	merged.Report.YearTwoFile = mergeString(envConfig.Report.YearTwoFile, fileConfig.Report.YearTwoFile, def.Report.YearTwoFile)
	merged.Report.YearTwoSheet = mergeString(envConfig.Report.YearTwoSheet, fileConfig.Report.YearTwoSheet, "")
	if fileConfig.Report.YearOne != 0 && envConfig.Report.YearOne == def.Report.YearOne {
		merged.Report.YearOne = fileConfig.Report.YearOne
	}
	if fileConfig.Report.YearTwo != 0 && envConfig.Report.YearTwo == def.Report.YearTwo {
		merged.Report.YearTwo = fileConfig.Report.YearTwo
	}
	if len(fileConfig.Report.Tariffs) > 0 {
		merged.Report.Tariffs = fileConfig.Report.Tariffs
	}
	if len(fileConfig.Report.MonthLabels) > 0 {
		merged.Report.MonthLabels = fileConfig.Report.MonthLabels
	}

	merged.Logging.Level = mergeString(envConfig.Logging.Level, fileConfig.Logging.Level, def.Logging.Level)
	merged.Logging.Output = mergeString(envConfig.Logging.Output, fileConfig.Logging.Output, def.Logging.Output)
	merged.Logging.FilePath = mergeString(envConfig.Logging.FilePath, fileConfig.Logging.FilePath, def.Logging.FilePath)

	return merged
}

// defaults returns the configuration envconfig produces from an empty
// environment, used to tell "still the default" apart from "explicitly set".
func defaults() Config {
	var cfg Config
	// Only fails on malformed struct tags, which cannot happen at runtime.
	_ = envconfig.Process("NPAI_DEFAULTS_PROBE", &cfg)
	return cfg
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// ReferenceDateTime returns the parsed contract-dedup anchor date.
func (c *AggregateConfig) ReferenceDateTime() time.Time {
	t, _ := time.Parse("2006-01-02", c.ReferenceDate)
	return t
}

// EnsureDirectories creates every directory the pipeline writes into.
func (p *PathsConfig) EnsureDirectories() error {
	for _, dir := range []string{p.BaseDir, p.ProcessedDir, p.TempZipDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
