package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	Database   Database   `envPrefix:"DB_"`
	Simulation Simulation `envPrefix:"SIM_"`
	Tracing    Tracing    `envPrefix:"TRACING_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // sqlite, mysql
	URL    string `env:"URL" envDefault:"privacycart.db"`
	Seed   bool   `env:"SEED" envDefault:"true"`
}

// Simulation holds the scripted delays that stand in for enclave and
// settlement work.
type Simulation struct {
	CheckoutDelay    time.Duration `env:"CHECKOUT_DELAY" envDefault:"4s"`
	VaultAccessDelay time.Duration `env:"VAULT_ACCESS_DELAY" envDefault:"2s"`
	IntentMatchDelay time.Duration `env:"INTENT_MATCH_DELAY" envDefault:"2500ms"`
	RefineAckDelay   time.Duration `env:"REFINE_ACK_DELAY" envDefault:"1s"`
	ChatReplyDelay   time.Duration `env:"CHAT_REPLY_DELAY" envDefault:"3s"`
	ChatProductLimit int           `env:"CHAT_PRODUCT_LIMIT" envDefault:"3"`
	NetworkFee       string        `env:"NETWORK_FEE" envDefault:"0.0001"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"30m"`
}

type Tracing struct {
	Enabled     bool   `env:"ENABLED" envDefault:"false"`
	Exporter    string `env:"EXPORTER" envDefault:"stdout"` // stdout, otlp
	Endpoint    string `env:"ENDPOINT" envDefault:"localhost:4317"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"privacycart"`
}
