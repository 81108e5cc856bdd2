package repository

// Config holds configuration for the repository service.
type Config struct {
	// DefaultPageSize is used when a listing request does not specify a
	// page size. Defaults to 20.
	DefaultPageSize int `json:"default_page_size,omitempty" yaml:"default_page_size"`

	// MaxPageSize caps requested page sizes. Defaults to 1000.
	MaxPageSize int `json:"max_page_size,omitempty" yaml:"max_page_size"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultPageSize: 20,
		MaxPageSize:     1000,
	}
}

func (c Config) clampPageSize(n int) int {
	if n <= 0 {
		return c.DefaultPageSize
	}
	if n > c.MaxPageSize {
		return c.MaxPageSize
	}
	return n
}
