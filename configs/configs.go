// Package configs parses the application configuration from environment
// variables. All variables use the "VAULT_API_" prefix.
package configs

import (
	"time"

	"github.com/caarlos0/env/v6"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Host                 string        `env:"HOST"`
	Port                 int           `env:"PORT" envDefault:"3000"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	ServerRequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"60s"`

	// Chain
	RPCEndpoint              string `env:"RPC_ENDPOINT" envDefault:"https://api.devnet.solana.com"`
	WSEndpoint               string `env:"WS_ENDPOINT"`
	VaultProgramID           string `env:"VAULT_PROGRAM_ID,notEmpty"`
	PositionManagerProgramID string `env:"POSITION_MANAGER_PROGRAM_ID"`
	CollateralMint           string `env:"COLLATERAL_MINT,notEmpty"`
	CollateralSymbol         string `env:"COLLATERAL_SYMBOL" envDefault:"USDC"`

	// Custodial fee payer; base64 encoded key takes precedence over the file.
	FeePayerKeypair     string `env:"FEE_PAYER_KEYPAIR"`
	FeePayerKeypairFile string `env:"FEE_PAYER_KEYPAIR_FILE"`

	// Submitter
	TransactionMaxSendRate int           `env:"TRANSACTION_MAX_SEND_RATE" envDefault:"10"`
	TransactionSendRetries int           `env:"TRANSACTION_SEND_RETRIES" envDefault:"3"`
	TransactionConfirmWait time.Duration `env:"TRANSACTION_CONFIRM_WAIT" envDefault:"30s"`

	// Worker pool
	WorkerQueueCapacity uint `env:"WORKER_QUEUE_CAPACITY" envDefault:"1000"`
	WorkerCount         uint `env:"WORKER_COUNT" envDefault:"100"`

	// Background loops
	DisableChainEvents      bool          `env:"DISABLE_CHAIN_EVENTS"`
	DisableReconciliation   bool          `env:"DISABLE_RECONCILIATION"`
	DisableBalanceMonitor   bool          `env:"DISABLE_BALANCE_MONITOR"`
	DisableTimelockSweep    bool          `env:"DISABLE_TIMELOCK_SWEEP"`
	ChainEventsReconnectDelay time.Duration `env:"CHAIN_EVENTS_RECONNECT_DELAY" envDefault:"5s"`
	ReconciliationInterval  time.Duration `env:"RECONCILIATION_INTERVAL" envDefault:"60s"`
	ReconciliationThreshold int64         `env:"RECONCILIATION_THRESHOLD" envDefault:"0"`
	BalanceMonitorInterval  time.Duration `env:"BALANCE_MONITOR_INTERVAL" envDefault:"30s"`
	LowBalanceThreshold     int64         `env:"LOW_BALANCE_THRESHOLD" envDefault:"0"`
	TimelockSweepInterval   time.Duration `env:"TIMELOCK_SWEEP_INTERVAL" envDefault:"30s"`
	TimelockDueSoonWindow   time.Duration `env:"TIMELOCK_DUE_SOON_WINDOW" envDefault:"5m"`

	// Event fan-out
	EventBufferSize int `env:"EVENT_BUFFER_SIZE" envDefault:"256"`

	// Maintenance mode pause duration
	PauseDuration time.Duration `env:"PAUSE_DURATION" envDefault:"5m"`

	// Idempotency middleware
	DisableIdempotencyMiddleware      bool   `env:"DISABLE_IDEMPOTENCY_MIDDLEWARE"`
	IdempotencyMiddlewareDatabaseType string `env:"IDEMPOTENCY_MIDDLEWARE_DATABASE_TYPE" envDefault:"local"`
	IdempotencyMiddlewareRedisURL     string `env:"IDEMPOTENCY_MIDDLEWARE_REDIS_URL"`
}

// Parse parses all environment variables to a valid Config.
func Parse() (*Config, error) {
	opts := env.Options{Prefix: "VAULT_API_"}

	cfg := Config{}
	err := env.Parse(&cfg, opts)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func ConfigureLogger(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.JSONFormatter{})
}
