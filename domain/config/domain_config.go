package config

import (
	"fmt"
	"time"
)

// DomainConfig holds the business limits of graph generation
type DomainConfig struct {
	// Generation limits
	GenerationNoteLimit int
	MaxDescriptionRunes int

	// Edge defaults
	DefaultEdgeWeight float64
	MinEdgeWeight     float64
	MaxEdgeWeight     float64

	// Node edit constraints
	MaxLabelLength int

	// Read side
	GraphViewCacheTTL time.Duration

	// Per-user serialization of generation runs
	EnableUserLock bool
	LockTimeout    time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		GenerationNoteLimit: 100,
		MaxDescriptionRunes: 200,

		DefaultEdgeWeight: 1.0,
		MinEdgeWeight:     0.0,
		MaxEdgeWeight:     10.0,

		MaxLabelLength: 200,

		GraphViewCacheTTL: 60 * time.Second,

		EnableUserLock: true,
		LockTimeout:    30 * time.Second,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.GraphViewCacheTTL = 5 * time.Minute
	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.GraphViewCacheTTL = 5 * time.Second
	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.GenerationNoteLimit <= 0 {
		return fmt.Errorf("generation note limit must be positive, got %d", c.GenerationNoteLimit)
	}
	if c.MaxDescriptionRunes <= 0 {
		return fmt.Errorf("description length must be positive, got %d", c.MaxDescriptionRunes)
	}
	if c.DefaultEdgeWeight < c.MinEdgeWeight || c.DefaultEdgeWeight > c.MaxEdgeWeight {
		return fmt.Errorf("default edge weight %.2f outside [%.2f, %.2f]", c.DefaultEdgeWeight, c.MinEdgeWeight, c.MaxEdgeWeight)
	}
	return nil
}
