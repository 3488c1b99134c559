package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/shopspring/decimal"
)

type fileToken struct {
	Name        string       `json:"name"`
	Owned       *json.Number `json:"owned,omitempty"`
	AvgBuyPrice *json.Number `json:"avg_buy_price,omitempty"`
	InWatchlist bool         `json:"in_watchlist"`
	InPortfolio bool         `json:"in_portfolio"`
}

type fileConfig struct {
	APIKey            string      `json:"api_key"`
	Tokens            []fileToken `json:"tokens"`
	RefreshInterval   int         `json:"refresh_interval"`
	FearAndGreedLimit string      `json:"fear_and_greed_limit"`
	LogFile           string      `json:"log_file,omitempty"`
	DebugLogging      bool        `json:"debug_logging,omitempty"`
}

func number(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := json.Number(d.String())
	return &n
}

// Save writes cfg to path. The data goes to a temporary file in the same
// directory which then replaces path, so a failed write leaves the previous
// file intact. An API key taken from the environment is not written.
func Save(path string, cfg *Config) error {
	fc := fileConfig{
		APIKey:            cfg.fileAPIKey,
		RefreshInterval:   cfg.RefreshInterval,
		FearAndGreedLimit: cfg.FearAndGreedLimit,
		LogFile:           cfg.LogFile,
		DebugLogging:      cfg.DebugLogging,
		Tokens:            make([]fileToken, 0, len(cfg.Tokens)),
	}
	if fc.APIKey == "" && os.Getenv(envPrefix+"_API_KEY") == "" {
		fc.APIKey = cfg.APIKey
	}
	for _, t := range cfg.Tokens {
		fc.Tokens = append(fc.Tokens, fileToken{
			Name:        t.Name,
			Owned:       number(t.Owned),
			AvgBuyPrice: number(t.AvgBuyPrice),
			InWatchlist: flagOrTrue(t.InWatchlist),
			InPortfolio: t.inPortfolio(),
		})
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Path: path, Err: err}
	}
	data = append(data, '\n')

	if err := writeFileAtomic(path, data, 0o600); err != nil {
		return &domain.PersistenceError{Op: "save", Path: path, Err: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// FilePersister saves the store content into the config file at Path,
// keeping the other settings of Base.
type FilePersister struct {
	mu   sync.Mutex
	path string
	base *Config
}

// NewFilePersister creates a persister writing to path. base is copied.
func NewFilePersister(path string, base *Config) *FilePersister {
	c := *base
	c.Tokens = append([]TokenConfig(nil), base.Tokens...)
	return &FilePersister{path: path, base: &c}
}

// Save implements the engine persister.
func (p *FilePersister) Save(tokens []domain.TrackedToken) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := *p.base
	next.SetTokens(tokens)
	if err := Save(p.path, &next); err != nil {
		return err
	}
	p.base = &next
	return nil
}

// Path returns the file written by Save.
func (p *FilePersister) Path() string { return p.path }
