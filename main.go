package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gomodule/redigo/redis"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/chain_events"
	"github.com/stablevault/solana-vault-api/configs"
	"github.com/stablevault/solana-vault-api/datastore/gorm"
	"github.com/stablevault/solana-vault-api/events"
	"github.com/stablevault/solana-vault-api/handlers"
	"github.com/stablevault/solana-vault-api/jobs"
	"github.com/stablevault/solana-vault-api/multisig"
	"github.com/stablevault/solana-vault-api/nonces"
	"github.com/stablevault/solana-vault-api/reconciliation"
	"github.com/stablevault/solana-vault-api/solana_helpers"
	"github.com/stablevault/solana-vault-api/system"
	"github.com/stablevault/solana-vault-api/transactions"
	"github.com/stablevault/solana-vault-api/vaults"
	"github.com/stablevault/solana-vault-api/yield_protocols"
)

const version = "0.1.0"

var (
	sha1ver   string // sha1 revision used to build the program
	buildTime string // when the executable was built
)

func main() {
	var printVersion bool

	flag.BoolVar(&printVersion, "version", false, "if true, print version and exit")
	flag.Parse()

	if printVersion {
		fmt.Printf("v%s build on %s from sha1 %s\n", version, buildTime, sha1ver)
		os.Exit(0)
	}

	cfg, err := configs.Parse()
	if err != nil {
		panic(err)
	}

	runServer(cfg)

	os.Exit(0)
}

func runServer(cfg *configs.Config) {
	configs.ConfigureLogger(cfg.LogLevel)

	log.Info("Starting server")

	programID, err := solana_helpers.ValidateAddress(cfg.VaultProgramID)
	if err != nil {
		log.Fatal(err)
	}

	mint, err := solana_helpers.ValidateAddress(cfg.CollateralMint)
	if err != nil {
		log.Fatal(err)
	}

	// The position manager defaults to the vault program itself when no
	// separate deployment is configured.
	pmProgramID := programID
	if cfg.PositionManagerProgramID != "" {
		pmProgramID, err = solana_helpers.ValidateAddress(cfg.PositionManagerProgramID)
		if err != nil {
			log.Fatal(err)
		}
	}

	feePayer, err := solana_helpers.LoadFeePayer(cfg.FeePayerKeypair, cfg.FeePayerKeypairFile)
	if err != nil {
		log.Fatal(err)
	}

	rpcClient := rpc.New(cfg.RPCEndpoint)

	// Database
	db, err := gorm.New()
	if err != nil {
		log.Fatal(err)
	}
	defer gorm.Close(db)

	broker := events.NewBroker(cfg.EventBufferSize)

	systemService := system.NewService(
		system.NewGormStore(db),
		system.WithPauseDuration(cfg.PauseDuration),
	)

	// Create a worker pool
	wp := jobs.NewWorkerPool(
		jobs.NewGormStore(db),
		cfg.WorkerQueueCapacity,
		cfg.WorkerCount,
		jobs.WithSystemService(systemService),
	)

	defer func() {
		wp.Stop()
		log.Info("Stopped workerpool")
	}()

	// Services
	jobsService := jobs.NewService(jobs.NewGormStore(db))
	transactionService := transactions.NewService(
		transactions.NewGormStore(db),
		rpcClient,
		feePayer,
		transactions.WithTxRatelimiter(cfg.TransactionMaxSendRate),
		transactions.WithSendRetries(cfg.TransactionSendRetries),
		transactions.WithConfirmationWait(cfg.TransactionConfirmWait),
		transactions.WithWorkerPool(wp),
	)
	vaultStore := vaults.NewGormStore(db)
	vaultService := vaults.NewService(vaultStore, transactionService, rpcClient, broker, programID, pmProgramID, mint)
	multisigService := multisig.NewService(multisig.NewGormStore(db), rpcClient, broker, feePayer, programID, mint)
	nonceService := nonces.NewService(nonces.NewGormStore(db))

	rateRegistry := yield_protocols.NewRegistry(
		yield_protocols.NewMarginfi(cfg.CollateralSymbol),
		yield_protocols.NewSolend(cfg.CollateralSymbol),
	)

	// Background loops
	if !cfg.DisableReconciliation {
		reconciler := reconciliation.NewReconciler(
			reconciliation.NewGormStore(db),
			vaultStore,
			vaultService,
			broker,
			systemService,
			cfg.ReconciliationInterval,
			cfg.ReconciliationThreshold,
		)
		wp.RegisterExecutor(reconciliation.RunJobType, func(ctx context.Context, j *jobs.Job) error {
			reconciler.Run(ctx)
			return nil
		})
		reconciler.Start()
		defer func() {
			reconciler.Stop()
			log.Info("Stopped reconciler")
		}()
	} else {
		log.Info("reconciliation disabled")
	}

	if !cfg.DisableBalanceMonitor {
		monitor := vaults.NewMonitor(vaultService, broker, cfg.BalanceMonitorInterval, uint64(cfg.LowBalanceThreshold))
		wp.RegisterExecutor(vaults.RefreshJobType, func(ctx context.Context, j *jobs.Job) error {
			monitor.Refresh(ctx)
			return nil
		})
		monitor.Start()
		defer func() {
			monitor.Stop()
			log.Info("Stopped balance monitor")
		}()
	} else {
		log.Info("balance monitor disabled")
	}

	if !cfg.DisableTimelockSweep {
		sweeper := vaults.NewTimelockSweeper(vaultStore, broker, cfg.TimelockSweepInterval, cfg.TimelockDueSoonWindow)
		sweeper.Start()
		defer func() {
			sweeper.Stop()
			log.Info("Stopped timelock sweeper")
		}()
	} else {
		log.Info("timelock sweep disabled")
	}

	if !cfg.DisableChainEvents && cfg.WSEndpoint != "" {
		indexer := chain_events.NewIndexer(
			rpcClient,
			cfg.WSEndpoint,
			programID,
			mint,
			transactions.NewGormStore(db),
			vaultStore,
			broker,
			systemService,
			cfg.ChainEventsReconnectDelay,
		)
		indexer.Start()
		defer func() {
			indexer.Stop()
			log.Info("Stopped chain event indexer")
		}()
	} else {
		log.Info("chain events disabled")
	}

	// HTTP handling
	systemHandler := handlers.NewSystem(systemService)
	jobsHandler := handlers.NewJobs(jobsService, wp)
	vaultHandler := handlers.NewVaults(vaultService, transactionService)
	transactionHandler := handlers.NewTransactions(transactionService)
	multisigHandler := handlers.NewMultisig(multisigService)
	instructionHandler := handlers.NewInstructions(vaultService, programID, mint)
	nonceHandler := handlers.NewNonces(nonceService)
	rateHandler := handlers.NewRates(rateRegistry)
	opsHandler := handlers.NewOps(wp)

	r := mux.NewRouter()

	// Catch the api version
	rv := r.PathPrefix("/{apiVersion}").Subrouter()

	// Debug
	rv.Handle("/debug", handlers.Debug("https://github.com/stablevault/solana-vault-api", sha1ver, buildTime)).Methods(http.MethodGet)

	// Health
	rv.HandleFunc("/health/ready", handlers.HandleHealthReady).Methods(http.MethodGet)
	rv.Handle("/health/liveness", handlers.Liveness(func() (interface{}, error) {
		return wp.Status()
	})).Methods(http.MethodGet)

	// System
	rv.Handle("/system/settings", systemHandler.GetSettings()).Methods(http.MethodGet)
	rv.Handle("/system/settings", systemHandler.SetSettings()).Methods(http.MethodPost)

	// Jobs
	rv.Handle("/jobs", jobsHandler.List()).Methods(http.MethodGet)            // list
	rv.Handle("/jobs/status", jobsHandler.Status()).Methods(http.MethodGet)   // pool status
	rv.Handle("/jobs/{jobId}", jobsHandler.Details()).Methods(http.MethodGet) // details

	// Vaults
	rv.Handle("/vaults", vaultHandler.List()).Methods(http.MethodGet)    // list
	rv.Handle("/vaults/tvl", vaultHandler.TVL()).Methods(http.MethodGet) // total value locked
	rv.Handle("/vaults/{owner}", vaultHandler.Details()).Methods(http.MethodGet)
	rv.Handle("/vaults/{owner}", vaultHandler.Initialize()).Methods(http.MethodPost)
	rv.Handle("/vaults/{owner}/chain-balance", vaultHandler.ChainBalance()).Methods(http.MethodGet)
	rv.Handle("/vaults/{owner}/transactions", vaultHandler.Transactions()).Methods(http.MethodGet)
	rv.Handle("/vaults/{owner}/settlement-account", vaultHandler.Link()).Methods(http.MethodPost)
	rv.Handle("/vaults/{owner}/lock", vaultHandler.Lock()).Methods(http.MethodPost)
	rv.Handle("/vaults/{owner}/unlock", vaultHandler.Unlock()).Methods(http.MethodPost)
	rv.Handle("/vaults/{owner}/withdrawals", vaultHandler.Withdraw()).Methods(http.MethodPost)
	rv.Handle("/vaults/{owner}/timelocks", vaultHandler.ScheduleWithdraw()).Methods(http.MethodPost)
	rv.Handle("/vaults/{owner}/emergency-withdrawal", vaultHandler.EmergencyWithdraw()).Methods(http.MethodPost)

	// Caller program allowlist
	rv.Handle("/authorized-programs", vaultHandler.AuthorizedPrograms()).Methods(http.MethodGet)
	rv.Handle("/authorized-programs", vaultHandler.AddAuthorizedProgram()).Methods(http.MethodPost)
	rv.Handle("/authorized-programs/{programId}", vaultHandler.RemoveAuthorizedProgram()).Methods(http.MethodDelete)

	// Transactions
	rv.Handle("/transactions", transactionHandler.List()).Methods(http.MethodGet)                 // list
	rv.Handle("/transactions/{signature}", transactionHandler.Details()).Methods(http.MethodGet)  // details

	// Multisig withdrawal proposals
	rv.Handle("/proposals", multisigHandler.List()).Methods(http.MethodGet)
	rv.Handle("/proposals", multisigHandler.Propose()).Methods(http.MethodPost)
	rv.Handle("/proposals/{proposalId}", multisigHandler.Status()).Methods(http.MethodGet)
	rv.Handle("/proposals/{proposalId}/approvals", multisigHandler.Approve()).Methods(http.MethodPost)

	// Unsigned instruction building
	rv.Handle("/instructions/initialize-vault", instructionHandler.InitializeVault()).Methods(http.MethodPost)
	rv.Handle("/instructions/deposit", instructionHandler.Deposit()).Methods(http.MethodPost)
	rv.Handle("/instructions/withdraw", instructionHandler.Withdraw()).Methods(http.MethodPost)
	rv.Handle("/instructions/request-withdraw", instructionHandler.RequestWithdraw()).Methods(http.MethodPost)
	rv.Handle("/instructions/transfer-collateral", instructionHandler.TransferCollateral()).Methods(http.MethodPost)
	rv.Handle("/instructions/yield/{op}", instructionHandler.Yield()).Methods(http.MethodPost)
	rv.Handle("/instructions/policy/{op}", instructionHandler.Policy()).Methods(http.MethodPost)
	rv.Handle("/instructions/governance/{op}", instructionHandler.Governance()).Methods(http.MethodPost)

	// Nonces
	rv.Handle("/nonces", nonceHandler.Issue()).Methods(http.MethodPost)
	rv.Handle("/nonces/consume", nonceHandler.Consume()).Methods(http.MethodPost)

	// Yield rates
	rv.Handle("/rates", rateHandler.List()).Methods(http.MethodGet)
	rv.Handle("/rates/best", rateHandler.Best()).Methods(http.MethodGet)

	// Ops
	rv.Handle("/ops/reconciliation/start", opsHandler.StartReconciliation()).Methods(http.MethodPost)
	rv.Handle("/ops/balance-refresh/start", opsHandler.StartBalanceRefresh()).Methods(http.MethodPost)

	h := http.TimeoutHandler(r, cfg.ServerRequestTimeout, "request timed out")
	h = handlers.UseCors(h)
	h = handlers.UseLogging(h)
	h = handlers.UseCompress(h)

	// Setup idempotency key middleware if it's enabled
	if !cfg.DisableIdempotencyMiddleware {
		var is handlers.IdempotencyStore
		switch cfg.IdempotencyMiddlewareDatabaseType {
		// Shared SQL/Gorm store (same as for main app)
		case handlers.IdempotencyStoreTypeShared.String():
			is = handlers.NewIdempotencyStoreGorm(db)
		// Redis, separate from app db
		case handlers.IdempotencyStoreTypeRedis.String():
			if cfg.IdempotencyMiddlewareRedisURL == "" {
				log.Fatal("idempotency middleware db set to redis but Redis URL is empty")
			}
			pool := &redis.Pool{
				MaxIdle:   80,
				MaxActive: 12000,
				Dial: func() (redis.Conn, error) {
					c, err := redis.DialURL(cfg.IdempotencyMiddlewareRedisURL)
					if err != nil {
						panic(err.Error())
					}
					return c, err
				},
			}

			client := pool.Get()

			defer func() {
				log.Info("Closing Redis client..")
				if err := client.Close(); err != nil {
					log.Warn(err)
				}
			}()

			is = handlers.NewIdempotencyStoreRedis(client)
		case handlers.IdempotencyStoreTypeLocal.String():
			is = handlers.NewIdempotencyStoreLocal()
		}

		h = handlers.IdempotencyHandler(h, handlers.IdempotencyHandlerOptions{
			Expiry: 1 * time.Hour,
			// Instruction building is read-only
			IgnorePaths: []string{"/v1/instructions"},
		}, is)
	}

	// Server boilerplate
	srv := &http.Server{
		Handler:      h,
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		WriteTimeout: 0, // Disabled, set cfg.ServerRequestTimeout instead
		ReadTimeout:  0, // Disabled, set cfg.ServerRequestTimeout instead
	}

	// Run our server in a goroutine so that it doesn't block.
	go func() {
		log.
			WithFields(log.Fields{
				"host": cfg.Host,
				"port": cfg.Port,
			}).
			Info("Server listening")
		if err := srv.ListenAndServe(); err != nil {
			log.Warn(err)
		}
	}()

	// Trap interrupt and gracefully shut down the server.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	sig := <-c

	log.Infof("Got signal: %s. Shutting down..", sig)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("Error in server shutdown: %s", err)
	}
}
