package sources

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"atm-reconciler/core/reconcile"
)

// Dispositions applied to matched records when the catalog entry does not
// configure its own pair. A movement found in any source means the ledger
// already carries the posting, so the record only awaits manual follow-up.
var defaultMatched = reconcile.Disposition{
	Justification: "PENDIENTE DE GESTION",
	Status:        "PARTIDA YA CONTABILIZADA",
}

// defaultTTL is how long sheet sources keep a loaded worksheet before
// rereading it from disk.
const defaultTTL = 5 * time.Minute

// SourceConfig is one catalog entry. Order in the catalog is lookup priority.
type SourceConfig struct {
	// Name identifies the source in logs and outcomes.
	Name string `mapstructure:"name"`

	// Kind selects the accessor variant.
	Kind string `mapstructure:"kind"`

	// Path and Sheet locate file-backed sources. Ignored for ledger-db.
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`

	// CacheSeconds overrides the worksheet cache TTL for this source.
	CacheSeconds int `mapstructure:"cache_seconds"`

	// Fields maps the lookup columns.
	Fields reconcile.FieldMap `mapstructure:"fields"`

	// Matched is the disposition applied when this source yields the
	// movement. Empty fields fall back to the pending-management pair.
	Matched reconcile.Disposition `mapstructure:"matched"`
}

// Catalog is the ordered list of lookup sources.
type Catalog struct {
	Sources []SourceConfig `mapstructure:"sources"`
}

// LoadCatalog reads the source catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading source catalog %s: %v", reconcile.ErrConfig, path, err)
	}

	var catalog Catalog
	if err := v.Unmarshal(&catalog); err != nil {
		return nil, fmt.Errorf("%w: parsing source catalog %s: %v", reconcile.ErrConfig, path, err)
	}
	return &catalog, nil
}

// Build turns the catalog into the ordered source chain. The database handle
// is only required when the catalog contains a ledger-db entry.
func (c *Catalog) Build(db *gorm.DB, logger *zap.Logger) ([]reconcile.SourceSpec, error) {
	specs := make([]reconcile.SourceSpec, 0, len(c.Sources))
	for _, sc := range c.Sources {
		spec, err := sc.build(db, logger)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if err := reconcile.ValidateSources(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

func (sc SourceConfig) build(db *gorm.DB, logger *zap.Logger) (reconcile.SourceSpec, error) {
	ttl := defaultTTL
	if sc.CacheSeconds > 0 {
		ttl = time.Duration(sc.CacheSeconds) * time.Second
	}

	var source reconcile.Source
	kind := reconcile.SourceKind(sc.Kind)
	switch kind {
	case reconcile.SourceLedgerDB:
		if db == nil {
			return reconcile.SourceSpec{}, fmt.Errorf("%w: source %q needs a database connection", reconcile.ErrConfig, sc.Name)
		}
		source = NewLedgerDB(db, logger)
	case reconcile.SourceLedgerFile:
		if sc.Path == "" || sc.Sheet == "" {
			return reconcile.SourceSpec{}, fmt.Errorf("%w: source %q needs a path and sheet", reconcile.ErrConfig, sc.Name)
		}
		source = NewLedgerFile(sc.Path, sc.Sheet, ttl, logger)
	case reconcile.SourceFallbackPrimary, reconcile.SourceFallbackHistoric:
		if sc.Path == "" || sc.Sheet == "" {
			return reconcile.SourceSpec{}, fmt.Errorf("%w: source %q needs a path and sheet", reconcile.ErrConfig, sc.Name)
		}
		source = NewFallbackSheet(sc.Path, sc.Sheet, ttl, logger)
	default:
		return reconcile.SourceSpec{}, fmt.Errorf("%w: source %q has unknown kind %q", reconcile.ErrConfig, sc.Name, sc.Kind)
	}

	matched := sc.Matched
	if matched.Justification == "" {
		matched.Justification = defaultMatched.Justification
	}
	if matched.Status == "" {
		matched.Status = defaultMatched.Status
	}

	return reconcile.SourceSpec{
		Name:    sc.Name,
		Kind:    kind,
		Source:  source,
		Fields:  sc.Fields,
		Matched: matched,
	}, nil
}
