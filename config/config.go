package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TTRSQ/gdax/domains/exchange"
	iexchange "github.com/TTRSQ/gdax/interface/exchange"
	"github.com/TTRSQ/gdax/util"
	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvAPIKey        = "GDAX_API_KEY"
	EnvAPISecret     = "GDAX_API_SECRET"
	EnvPassphrase    = "GDAX_PASSPHRASE"
	EnvSandbox       = "GDAX_SANDBOX"
	EnvAPIURI        = "GDAX_API_URI"
	EnvWebsocketURI  = "GDAX_WS_URI"
	EnvProducts      = "GDAX_PRODUCTS"
	EnvChannels      = "GDAX_CHANNELS"
	EnvTimeout       = "GDAX_TIMEOUT"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
)

// Config of the feed command and the factory helpers.
type Config struct {
	Key          iexchange.Key
	Sandbox      bool
	APIURI       string        `validate:"required,url"`
	WebsocketURI string        `validate:"required,url"`
	Products     []string      `validate:"min=1,dive,required"`
	Channels     []string      `validate:"min=1,dive,oneof=full level2 ticker matches heartbeat user"`
	Timeout      time.Duration `validate:"gt=0"`

	Redis Redis
}

// Redis connection settings.
type Redis struct {
	Addr     string `validate:"required,hostname_port"`
	Password string
	DB       int `validate:"gte=0"`
}

// HasKey reports whether every part of the key is set.
func (c Config) HasKey() bool {
	return c.Key.Validate() == nil
}

// Load reads the .env files that exist (".env" when none is given), then the
// process environment, which wins over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	fileVals := map[string]string{}
	for _, f := range envFiles {
		if !util.FileExists(f) {
			continue
		}
		vals, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		for k, v := range vals {
			fileVals[k] = v
		}
	}
	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return fileVals[key]
	}

	cfg := Config{
		Key: iexchange.Key{
			APIKey:     get(EnvAPIKey),
			APISecKey:  get(EnvAPISecret),
			Passphrase: get(EnvPassphrase),
		},
		Products: []string{"BTC-USD"},
		Channels: []string{"ticker", "level2"},
		Timeout:  10 * time.Second,
		Redis:    Redis{Addr: "localhost:6379"},
	}

	env := exchange.Production
	if v := get(EnvSandbox); v != "" {
		sandbox, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvSandbox, err)
		}
		cfg.Sandbox = sandbox
		if sandbox {
			env = exchange.Sandbox
		}
	}
	endpoints, err := exchange.EndpointsOf(env)
	if err != nil {
		return nil, err
	}
	cfg.APIURI = endpoints.API
	cfg.WebsocketURI = endpoints.Websocket
	if v := get(EnvAPIURI); v != "" {
		cfg.APIURI = v
	}
	if v := get(EnvWebsocketURI); v != "" {
		cfg.WebsocketURI = v
	}

	if v := get(EnvProducts); v != "" {
		cfg.Products = splitList(v)
	}
	if v := get(EnvChannels); v != "" {
		cfg.Channels = splitList(v)
	}
	if v := get(EnvTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = timeout
	}

	if v := get(EnvRedisAddr); v != "" {
		cfg.Redis.Addr = v
	}
	cfg.Redis.Password = get(EnvRedisPassword)
	if v := get(EnvRedisDB); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		cfg.Redis.DB = db
	}

	if err := util.Validator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func splitList(v string) []string {
	ret := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			ret = append(ret, s)
		}
	}
	return ret
}
