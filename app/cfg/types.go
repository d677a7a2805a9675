package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port         string
	BaseUrl      string
	APIAccessKey string
	SettingsFile string

	// External quote source configuration
	QuoteAPIURL     string
	QuoteAPITimeout int
	CacheTTL        int
	RedisAddr       string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
