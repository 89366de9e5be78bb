package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datalens/internal/analysis"
	"github.com/KaramelBytes/datalens/internal/ingest"
	"github.com/KaramelBytes/datalens/internal/utils"
)

const (
	envPrefix = "DATALENS"
	dirName   = ".datalens"
)

// Global configuration structure.
type Global struct {
	// Inference and report shaping
	SampleRows             int     `mapstructure:"sample_rows" yaml:"sample_rows"`
	QuickSampleRows        int     `mapstructure:"quick_sample_rows" yaml:"quick_sample_rows"`
	NumericMinMatches      int     `mapstructure:"numeric_min_matches" yaml:"numeric_min_matches"`
	NumericRatio           float64 `mapstructure:"numeric_ratio" yaml:"numeric_ratio"`
	CategoricalMinDistinct int     `mapstructure:"categorical_min_distinct" yaml:"categorical_min_distinct"`
	CategoricalMaxDistinct int     `mapstructure:"categorical_max_distinct" yaml:"categorical_max_distinct"`
	HistogramBins          int     `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	TopCategories          int     `mapstructure:"top_categories" yaml:"top_categories"`

	// Charts
	MaxPoints int    `mapstructure:"max_points" yaml:"max_points"`
	Locale    string `mapstructure:"locale" yaml:"locale"`

	// Loading and execution
	MaxRows          int    `mapstructure:"max_rows" yaml:"max_rows"`
	WorkerQueue      int    `mapstructure:"worker_queue" yaml:"worker_queue"`
	BatchConcurrency int    `mapstructure:"batch_concurrency" yaml:"batch_concurrency"`
	ViewsDir         string `mapstructure:"views_dir" yaml:"views_dir"`
}

// Dir returns ~/.datalens.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datalens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := analysis.DefaultOptions()
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("quick_sample_rows", d.QuickSampleRows)
	v.SetDefault("numeric_min_matches", d.NumericMinMatches)
	v.SetDefault("numeric_ratio", d.NumericRatio)
	v.SetDefault("categorical_min_distinct", d.CategoricalMinDistinct)
	v.SetDefault("categorical_max_distinct", d.CategoricalMaxDistinct)
	v.SetDefault("histogram_bins", d.HistogramBins)
	v.SetDefault("top_categories", d.TopCategories)
	v.SetDefault("max_points", analysis.DefaultMaxPoints)
	v.SetDefault("locale", "en")
	v.SetDefault("max_rows", 100000)
	v.SetDefault("worker_queue", 16)
	v.SetDefault("batch_concurrency", 4)
	v.SetDefault("views_dir", "")
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults. A .env file in
// the working directory or any parent is applied to the environment first;
// variables already set win over it.
func Load(cfgFile string) (*Global, error) {
	if envFile, err := utils.FindUp("", ".env"); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	c, err := decode(v)
	if err != nil {
		return nil, err
	}
	if c.ViewsDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.ViewsDir = filepath.Join(dir, "views")
	}
	vd, err := utils.ExpandHome(c.ViewsDir)
	if err != nil {
		return nil, err
	}
	c.ViewsDir = vd
	return c, nil
}

func decode(v *viper.Viper) (*Global, error) {
	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Defaults returns the built-in configuration without reading files or env.
// It panics if the built-in defaults do not decode.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	c, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults: %v", err))
	}
	if dir, err := Dir(); err == nil {
		c.ViewsDir = filepath.Join(dir, "views")
	}
	return c
}

// AnalysisOptions maps the configuration onto engine options.
func (c *Global) AnalysisOptions() analysis.Options {
	return analysis.Options{
		SampleRows:             c.SampleRows,
		QuickSampleRows:        c.QuickSampleRows,
		NumericMinMatches:      c.NumericMinMatches,
		NumericRatio:           c.NumericRatio,
		CategoricalMinDistinct: c.CategoricalMinDistinct,
		CategoricalMaxDistinct: c.CategoricalMaxDistinct,
		HistogramBins:          c.HistogramBins,
		TopCategories:          c.TopCategories,
		Correlations:           true,
	}
}

// IngestOptions returns loader options carrying the row cap.
func (c *Global) IngestOptions() ingest.Options {
	return ingest.Options{MaxRows: c.MaxRows}
}
