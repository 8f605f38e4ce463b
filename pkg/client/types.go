package client

// Config holds configuration for a coordinator console client.
type Config struct {
	ServerURL         string
	Role              string
	Studio            string
	AdditionalStudios []string
	DisplayName       string
	UserAgent         string
}
