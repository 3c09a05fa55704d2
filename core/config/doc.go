// Package config provides configuration management for the ATM reconciler.
//
// It utilizes Viper for loading configuration from environment variables and
// a .env overlay, with defaults declared as struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP trigger server settings (port, API key)
//   - Database: ledger MySQL connection details
//   - Storage: S3/MinIO credentials and bucket settings for run archives
//   - Log: logging level and format
//   - Reconcile: backing store location, source catalog path, run options
//
// The ordered lookup-source catalog itself is a separate YAML file (see
// feature/arqueo/sources.LoadCatalog) so operations can reorder or disable
// sources without touching the environment.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Reconcile.StorePath)
package config
