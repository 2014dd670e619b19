package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level ledgerbook.yaml configuration.
type Config struct {
	Business  BusinessConfig  `yaml:"business"`
	Currency  string          `yaml:"currency"`
	Numbering NumberingConfig `yaml:"numbering"`
	Terms     TermsConfig     `yaml:"terms"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Database  DatabaseConfig  `yaml:"database"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
}

// NumberingConfig sets the document number prefixes. Each prefix keeps
// its own sequential counter.
type NumberingConfig struct {
	InvoicePrefix    string `yaml:"invoice_prefix"`
	EstimatePrefix   string `yaml:"estimate_prefix"`
	CreditNotePrefix string `yaml:"credit_note_prefix"`
}

// TermsConfig sets default payment terms.
type TermsConfig struct {
	DefaultNetDays int `yaml:"default_net_days"`
}

// LedgerConfig binds the posting engine to chart-of-accounts codes.
type LedgerConfig struct {
	ReceivableCode string `yaml:"receivable_code"`
	PayableCode    string `yaml:"payable_code"`
	TaxPayableCode string `yaml:"tax_payable_code"`
	CashCode       string `yaml:"cash_code"`
	SalesCode      string `yaml:"sales_code"`
	ShippingCode   string `yaml:"shipping_code"`
}

// DatabaseConfig controls storage. DSN may also come from the
// LEDGERBOOK_DSN environment variable, which wins when set.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// Load reads a ledgerbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if dsn := os.Getenv("LEDGERBOOK_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		Currency: "USD",
		Numbering: NumberingConfig{
			InvoicePrefix:    "INV",
			EstimatePrefix:   "EST",
			CreditNotePrefix: "CN",
		},
		Terms: TermsConfig{
			DefaultNetDays: 30,
		},
		Ledger: LedgerConfig{
			ReceivableCode: "1200",
			PayableCode:    "2100",
			TaxPayableCode: "2200",
			CashCode:       "1010",
			SalesCode:      "4010",
			ShippingCode:   "4090",
		},
		Database: DatabaseConfig{
			DSN: "ledgerbook.db",
		},
	}
}
