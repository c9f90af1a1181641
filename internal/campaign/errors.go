package campaign

import "errors"

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrCorpusDirEmpty     = errors.New("corpus_dir cannot be empty")
	ErrInvalidLogLevel    = errors.New("log_level must be one of debug, info, warn, error")
	ErrNegativeRSSLimit   = errors.New("rss_limit_mb cannot be negative")
	ErrUnknownVariant     = errors.New("unknown variant")
	ErrInvalidLimits      = errors.New("count and length must be positive for bounded policies")
)
