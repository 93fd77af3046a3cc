package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Usuarios int           // Number of usuarios to create
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every request
}

// Usuario mirrors the public usuario representation.
type Usuario struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
}

// Stats holds run statistics.
type Stats struct {
	Created   int
	Listed    int
	Fetched   int
	Updated   int
	Deleted   int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
