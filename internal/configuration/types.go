package configuration

// Config is the content of an .npm-upgraderc.yml file. Every field is
// optional.
type Config struct {
	Registry  RegistryConfig  `yaml:"registry"`
	Changelog ChangelogConfig `yaml:"changelog"`
	Recency   RecencyConfig   `yaml:"recency"`
}

type RegistryConfig struct {
	URL         string `yaml:"url,omitempty"`
	Token       string `yaml:"token,omitempty"`
	Retries     *int   `yaml:"retries,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	Timeout     string `yaml:"timeout,omitempty"` // Go duration or days, e.g. "30s"
}

type ChangelogConfig struct {
	RemoteDBURL string `yaml:"remoteDbUrl,omitempty"`
}

// RecencyConfig holds the release age thresholds as Go durations or whole
// days ("3d").
type RecencyConfig struct {
	Info    string `yaml:"info,omitempty"`
	Warning string `yaml:"warning,omitempty"`
	Caution string `yaml:"caution,omitempty"`
}
