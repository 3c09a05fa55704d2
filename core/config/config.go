package config

import (
	"reflect"
	"strings"

	"atm-reconciler/core/database"
	"atm-reconciler/core/logger"
	"atm-reconciler/core/server"
	"atm-reconciler/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP trigger server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the archive object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the ledger database connection.
	Database database.Config `mapstructure:"database"`
	// Reconcile holds configuration for the reconciliation run itself.
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

// ReconcileConfig locates the arqueo backing store and the source catalog.
type ReconcileConfig struct {
	// StorePath is the arqueo management workbook holding the discrepancy
	// records.
	StorePath string `mapstructure:"store_path" default:"insumos/gestion.xlsx"`
	// StoreSheet is the worksheet inside the workbook.
	StoreSheet string `mapstructure:"store_sheet" default:"GESTION"`
	// SourcesFile is the YAML catalog defining the ordered lookup sources.
	SourcesFile string `mapstructure:"sources_file" default:"config/sources.yaml"`
	// ProcessDate optionally pins the run date (YYYY-MM-DD). Empty means
	// today; the arqueo date defaults to the previous business day.
	ProcessDate string `mapstructure:"process_date" default:""`
	// ArchiveEnabled uploads the processed store and backup to object
	// storage after a successful run.
	ArchiveEnabled bool `mapstructure:"archive_enabled" default:"false"`
	// ArchiveRetentionDays prunes archived runs older than this many days.
	// Zero keeps everything.
	ArchiveRetentionDays int `mapstructure:"archive_retention_days" default:"0"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
