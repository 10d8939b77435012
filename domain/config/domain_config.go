package config

import "errors"

var (
	errInvalidGeometry    = errors.New("layout geometry values must be positive")
	errInvalidForkOffsets = errors.New("fork offsets must be positive and MaxHorizontalOffset >= ForkHorizontalOffset")
	errInvalidLimits      = errors.New("tree limits must be positive")
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Tree constraints
	MaxNodesPerProject int
	MaxDepth           int
	MaxContentLength   int

	// Layout geometry. The ratios between these four matter: the layout
	// algorithm guarantees non-overlap only while widths and gaps keep
	// their relative proportions.
	NodeWidth   float64
	SiblingGap  float64
	LevelHeight float64
	TreeGap     float64

	// Fork placement
	ForkHorizontalOffset      float64
	MaxHorizontalOffset       float64
	ForkRowVerticalOffset     float64
	ParentChildVerticalOffset float64

	// Context building
	DefaultMaxContextTokens int

	// Validation settings
	AllowEmptyContent bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Tree constraints
		MaxNodesPerProject: 10000,
		MaxDepth:           500,
		MaxContentLength:   200000,

		// Layout geometry
		NodeWidth:   350,
		SiblingGap:  50,
		LevelHeight: 150,
		TreeGap:     400,

		// Fork placement
		ForkHorizontalOffset:      400,
		MaxHorizontalOffset:       1600,
		ForkRowVerticalOffset:     100,
		ParentChildVerticalOffset: 150,

		// Context building
		DefaultMaxContextTokens: 8000,

		// Validation settings
		AllowEmptyContent: true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	cfg := DefaultDomainConfig()

	// More restrictive limits for production
	cfg.MaxNodesPerProject = 5000
	cfg.MaxContentLength = 100000
	cfg.MaxDepth = 200

	return cfg
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	cfg := DefaultDomainConfig()

	// More permissive for development
	cfg.MaxNodesPerProject = 100000
	cfg.MaxDepth = 2000

	return cfg
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
	if c.NodeWidth <= 0 || c.SiblingGap < 0 || c.LevelHeight <= 0 || c.TreeGap < 0 {
		return errInvalidGeometry
	}
	if c.ForkHorizontalOffset <= 0 || c.MaxHorizontalOffset < c.ForkHorizontalOffset {
		return errInvalidForkOffsets
	}
	if c.MaxNodesPerProject <= 0 || c.MaxDepth <= 0 {
		return errInvalidLimits
	}
	return nil
}
