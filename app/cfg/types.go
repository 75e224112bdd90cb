package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath      string
	UploadsDir  string
	SearchIndex string
	SeedFile    string

	// HTTP
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Import
	UserAgent      string
	ImportInterval int
	LockTTL        int
	Language       string
	AuthorEmail    string
	ExtractContent bool

	// Redis
	RedisAddr     string
	RedisPassword string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

func (c *Cfg) ImportIntervalDuration() time.Duration {
	if c.ImportInterval <= 0 {
		return time.Hour
	}
	return time.Duration(c.ImportInterval) * time.Second
}

func (c *Cfg) LockTTLDuration() time.Duration {
	if c.LockTTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.LockTTL) * time.Second
}
