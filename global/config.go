package global

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"ChatRelay/logger"
	"ChatRelay/tools/security"
)

// AppConfig carries every runtime knob. Values come from the environment,
// optionally seeded from a .env file in the working directory.
type AppConfig struct {
	Port         int    `envconfig:"PORT" default:"3001"`
	ClientOrigin string `envconfig:"CLIENT_ORIGIN" default:"http://localhost:5173"`

	MongoURL      string `envconfig:"MONGO_URL" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DB" default:"chat"`
	MongoUser     string `envconfig:"MONGO_USER"`
	MongoPassword string `envconfig:"MONGO_PASSWORD"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`

	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`
	ImageDir  string `envconfig:"IMAGE_DIR" default:"public/images"`

	// Liveness protocol timing. A connection that misses a pong within
	// PongWait of a ping is considered dead.
	PingInterval time.Duration `envconfig:"PING_INTERVAL" default:"5s"`
	PongWait     time.Duration `envconfig:"PONG_WAIT" default:"1s"`

	// TTL on the redis presence mirror keys; renewed on every ping tick.
	PresenceTTL time.Duration `envconfig:"PRESENCE_TTL" default:"30s"`

	NodeID int64 `envconfig:"NODE_ID" default:"1"`
}

var Config AppConfig

// Load seeds the environment from .env (if present) and decodes AppConfig.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Infof("no .env file loaded: %v", err)
	}
	if err := envconfig.Process("", &Config); err != nil {
		return nil, err
	}
	return &Config, nil
}

func (c *AppConfig) JWTOptions() security.Options {
	return security.DefaultOptions([]byte(c.JWTSecret))
}
