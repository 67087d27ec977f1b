package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds infrastructure config from environment variables
// (or a .env file loaded at startup).
type Settings struct {
	MistralAPIKey      string
	MistralModel       string
	DiskCacheDirectory string
	InputFolder        string
	OutputFolder       string
	SourceConfigPath   string // optional YAML override for the input source
}

// Load reads settings from the environment and applies defaults.
// It fails when MISTRAL_API_KEY is missing, before any processing starts.
func Load() (*Settings, error) {
	s := loadDefaults()
	if s.MistralAPIKey == "" {
		return nil, fmt.Errorf("MISTRAL_API_KEY environment variable not set")
	}
	return s, nil
}

// LoadOffline is Load without the API key requirement, for commands that
// never call the model (cache inspection, input download).
func LoadOffline() (*Settings, error) {
	return loadDefaults(), nil
}

func loadDefaults() *Settings {
	return &Settings{
		MistralAPIKey:      os.Getenv("MISTRAL_API_KEY"),
		MistralModel:       getEnv("MISTRAL_MODEL", "mistral-medium"),
		DiskCacheDirectory: getEnv("DISK_CACHE_DIRECTORY", ".data"),
		InputFolder:        getEnv("INPUT_FOLDER", ".data/inputs"),
		OutputFolder:       getEnv("OUTPUT_FOLDER", ".data/outputs"),
		SourceConfigPath:   os.Getenv("SOURCE_CONFIG"),
	}
}

// EnsureFolders creates the input, output and cache directories if missing.
func (s *Settings) EnsureFolders() error {
	for _, dir := range []string{s.InputFolder, s.OutputFolder, s.DiskCacheDirectory} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create folder %s: %w", dir, err)
		}
	}
	return nil
}

// InputFile is the local path the organisations spreadsheet is saved to.
func (s *Settings) InputFile() string {
	return filepath.Join(s.InputFolder, "orgs.xlsx")
}

// OutputJSON is the path of the raw classification dump.
func (s *Settings) OutputJSON() string {
	return filepath.Join(s.OutputFolder, "orgs_classified.json")
}

// OutputCSV is the path of the merged, sorted report.
func (s *Settings) OutputCSV() string {
	return filepath.Join(s.OutputFolder, "orgs_classified.csv")
}

// CachePath is the sqlite file backing the disk cache.
func (s *Settings) CachePath() string {
	return filepath.Join(s.DiskCacheDirectory, "cache.db")
}

// --- Source configuration (YAML) ---

// The Grist export of the OpenSustain.tech organisations table.
const defaultOrganisationsURL = "https://api.getgrist.com/o/docs/api/docs/gSscJkc5Rb1Rw45gh1o1Yc/download/xlsx?viewSection=7&tableId=Organizations&activeSortSpec=%5B-156%5D&filters=%5B%7B%22colRef%22%3A124%2C%22filter%22%3A%22%7B%5C%22excluded%5C%22%3A%5B%5D%7D%22%7D%5D&linkingFilter=%7B%22filters%22%3A%7B%7D%2C%22operations%22%3A%7B%7D%7D"

// SourceConfig describes where the organisations come from (from YAML).
type SourceConfig struct {
	OrganisationsURL string  `yaml:"organisations_url"`
	Columns          Columns `yaml:"columns"`
}

// Columns names the spreadsheet columns the pipeline reads.
type Columns struct {
	Website  string `yaml:"website"`
	Type     string `yaml:"type"`
	Location string `yaml:"location"`
}

// DefaultSource returns the built-in source settings matching the
// upstream Grist export.
func DefaultSource() *SourceConfig {
	return &SourceConfig{
		OrganisationsURL: defaultOrganisationsURL,
		Columns: Columns{
			Website:  "organization_website",
			Type:     "form_of_organization",
			Location: "location_country",
		},
	}
}

// LoadSourceConfig reads the YAML source config. An empty path returns the
// defaults; fields left empty in the file fall back to them too.
func LoadSourceConfig(path string) (*SourceConfig, error) {
	cfg := DefaultSource()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source config at '%s': %w", path, err)
	}
	var file SourceConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML source config: %w", err)
	}
	if file.OrganisationsURL != "" {
		cfg.OrganisationsURL = file.OrganisationsURL
	}
	if file.Columns.Website != "" {
		cfg.Columns.Website = file.Columns.Website
	}
	if file.Columns.Type != "" {
		cfg.Columns.Type = file.Columns.Type
	}
	if file.Columns.Location != "" {
		cfg.Columns.Location = file.Columns.Location
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
