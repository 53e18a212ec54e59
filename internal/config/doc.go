// Package config provides configuration management for alquimia.
//
// Configuration is loaded from environment variables using the env package.
// All configuration values except the fabric credentials have sensible
// defaults for development use. Credentials are validated at client
// construction, not here, so commands that never touch the fabric work
// without them.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("API server will listen on %s\n", cfg.GetHTTPAddr())
package config
