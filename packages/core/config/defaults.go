package config

const (
	DefaultProxyEndpoint = "http://localhost:4000/proxy"
	DefaultHistoryLimit  = 50
	DefaultDatabase      = ".hitstudio.db"
	DefaultListen        = ":4000"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		ProxyEndpoint:         DefaultProxyEndpoint,
		Timeout:               0,
		HistoryLimit:          DefaultHistoryLimit,
		Database:              DefaultDatabase,
		AllowDeleteBody:       BoolPtr(false),
		RecordTransportErrors: BoolPtr(false),
		Listen:                DefaultListen,
		FollowRedirects:       BoolPtr(true),
		MaxRedirects:          10,
		ValidateSSL:           BoolPtr(true),
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		NoColor: BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	d := DefaultConfig()
	return c.ProxyEndpoint == d.ProxyEndpoint &&
		c.Timeout == d.Timeout &&
		c.HistoryLimit == d.HistoryLimit &&
		c.Database == d.Database &&
		c.GetAllowDeleteBody() == d.GetAllowDeleteBody() &&
		c.GetRecordTransportErrors() == d.GetRecordTransportErrors() &&
		c.Listen == d.Listen &&
		c.GetFollowRedirects() == d.GetFollowRedirects() &&
		c.MaxRedirects == d.MaxRedirects &&
		c.GetValidateSSL() == d.GetValidateSSL() &&
		c.RateLimit == d.RateLimit &&
		len(c.Headers) == 0 &&
		c.Log == d.Log &&
		c.GetNoColor() == d.GetNoColor()
}
