// Package config loads and validates the declarative stack definition.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eleven-am/plinth/internal/domain"
)

// Environment variables that supply or override the database
// credentials, so they never have to live in the config file.
const (
	EnvMasterUsername = "PLINTH_MASTER_USERNAME"
	EnvMasterPassword = "PLINTH_MASTER_PASSWORD"
)

// Stack is the operator-facing definition of one deployment.
type Stack struct {
	Name          string   `yaml:"name"`
	Region        string   `yaml:"region"`
	GuardExisting bool     `yaml:"guardExisting"`
	Network       Network  `yaml:"network"`
	Database      Database `yaml:"database"`
}

type Network struct {
	CIDRBlock      string `yaml:"cidrBlock"`
	AllowedIngress string `yaml:"allowedIngress"`
}

type Database struct {
	MasterUsername      string `yaml:"masterUsername"`
	MasterPassword      Secret `yaml:"masterPassword"`
	InstanceCount       int    `yaml:"instanceCount"`
	InstanceClass       string `yaml:"instanceClass"`
	BackupRetentionDays int    `yaml:"backupRetentionDays"`
	BackupWindow        string `yaml:"backupWindow"`
}

// Default returns a Stack with every optional field filled in. Loading
// merges the file over these values, so omitted fields keep them.
func Default() *Stack {
	return &Stack{
		GuardExisting: true,
		Network: Network{
			CIDRBlock:      "10.0.0.0/16",
			AllowedIngress: "0.0.0.0/0",
		},
		Database: Database{
			InstanceCount:       1,
			InstanceClass:       "db.t3.medium",
			BackupRetentionDays: 5,
			BackupWindow:        "07:00-09:00",
		},
	}
}

// Load reads a YAML stack definition, layers it over the defaults,
// applies credential overrides from the environment, and validates the
// result.
func Load(path string) (*Stack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

func (s *Stack) applyEnv() {
	if v := os.Getenv(EnvMasterUsername); v != "" {
		s.Database.MasterUsername = v
	}
	if v := os.Getenv(EnvMasterPassword); v != "" {
		s.Database.MasterPassword = NewSecret(v)
	}
}

var (
	nameRE     = regexp.MustCompile(`^[a-z]([a-z0-9-]{0,38}[a-z0-9])?$`)
	usernameRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{0,62}$`)
	windowRE   = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]-([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Validate checks the definition against the constraints the provider
// would otherwise reject halfway through an apply.
func (s *Stack) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !nameRE.MatchString(s.Name) {
		return fmt.Errorf("name %q must be lowercase alphanumeric with hyphens, starting with a letter, at most 40 characters", s.Name)
	}
	if s.Region == "" {
		return fmt.Errorf("region is required")
	}
	if !domain.ValidCIDR(s.Network.CIDRBlock) {
		return fmt.Errorf("network.cidrBlock %q is not a valid IPv4 CIDR block", s.Network.CIDRBlock)
	}
	if _, err := domain.SubnetCIDRs(s.Network.CIDRBlock, domain.SubnetCount); err != nil {
		return fmt.Errorf("network.cidrBlock: %w", err)
	}
	if !domain.ValidCIDR(s.Network.AllowedIngress) {
		return fmt.Errorf("network.allowedIngress %q is not a valid IPv4 CIDR block", s.Network.AllowedIngress)
	}
	if s.Database.MasterUsername == "" {
		return fmt.Errorf("database.masterUsername is required (or set %s)", EnvMasterUsername)
	}
	if !usernameRE.MatchString(s.Database.MasterUsername) {
		return fmt.Errorf("database.masterUsername %q must be alphanumeric and start with a letter", s.Database.MasterUsername)
	}
	password := s.Database.MasterPassword.Value()
	if password == "" {
		return fmt.Errorf("database.masterPassword is required (or set %s)", EnvMasterPassword)
	}
	if len(password) < 8 || len(password) > 100 {
		return fmt.Errorf("database.masterPassword must be 8 to 100 characters")
	}
	if strings.ContainsAny(password, `/"@`) {
		return fmt.Errorf(`database.masterPassword must not contain '/', '"', or '@'`)
	}
	if s.Database.InstanceCount < 1 || s.Database.InstanceCount > 16 {
		return fmt.Errorf("database.instanceCount %d must be between 1 and 16", s.Database.InstanceCount)
	}
	if !strings.HasPrefix(s.Database.InstanceClass, "db.") {
		return fmt.Errorf("database.instanceClass %q must start with %q", s.Database.InstanceClass, "db.")
	}
	if s.Database.BackupRetentionDays < 1 || s.Database.BackupRetentionDays > 35 {
		return fmt.Errorf("database.backupRetentionDays %d must be between 1 and 35", s.Database.BackupRetentionDays)
	}
	if !windowRE.MatchString(s.Database.BackupWindow) {
		return fmt.Errorf("database.backupWindow %q must look like 07:00-09:00", s.Database.BackupWindow)
	}
	return nil
}
