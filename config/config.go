package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: OAuth/OIDC provider and backend configuration
//   - storage.go: storage tier configuration (file, redis, keyring)
//   - http.go: application URLs, navigation and the loopback callback server
//   - logging.go: log level
type AppConfig struct {
	// Authentication configuration
	OAuth   OAuthConfig   `envPrefix:"OAUTH_"`
	Backend BackendConfig `envPrefix:"BACKEND_"`
	Claims  ClaimsConfig  `envPrefix:"CLAIMS_"`
	Roles   RolesConfig   `envPrefix:"ROLES_"`

	// Storage tier configuration
	Storage StorageConfig `envPrefix:"STORAGE_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`

	// Application URLs and navigation
	App  AppURLConfig `envPrefix:"APP_"`
	HTTP HTTPConfig

	// Logging configuration
	Logging LoggingConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.OAuth.Sanitize()
	c.Backend.Sanitize()
	c.Claims.Sanitize()
	c.Roles.Sanitize()
	c.Storage.Sanitize()
	c.App.Sanitize()
	c.HTTP.Sanitize(c.OAuth.RedirectURI)
	c.Logging.Sanitize()
}
