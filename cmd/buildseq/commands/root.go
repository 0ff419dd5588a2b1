// Package commands wires configuration, logging, the graph store, and the
// HTTP/AMQP front ends into a running server, grounded on
// bbak-mcs-mcp/cmd/mcs-mcp/commands/root.go's cobra rootCmd with a
// PersistentPreRun bootstrap and a Run that starts the long-lived server.
package commands

import (
	"context"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mars-robotics/buildseq/internal/amqpapi"
	"github.com/mars-robotics/buildseq/internal/config"
	"github.com/mars-robotics/buildseq/internal/graph"
	"github.com/mars-robotics/buildseq/internal/httpapi"
	"github.com/mars-robotics/buildseq/internal/logging"
	"github.com/mars-robotics/buildseq/internal/sequence"
	"github.com/mars-robotics/buildseq/internal/validation"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	serverConfigPath string
	envConfigPath    string
	schemaDir        string
	logDir           string
	verbose          bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "buildseq",
	Short: "buildseq plans robotic build sequences over a property graph",
	Long: `buildseq resolves a goal-regression plan from a requested area and
initial situation, fronted by both an HTTP API and an AMQP consumer.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := logging.Init(logging.Options{LogDir: logDir, Verbose: verbose}); err != nil {
			return err
		}

		loaded, err := config.Load(serverConfigPath, envConfigPath, schemaDir)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}
		cfg = loaded

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("buildseq starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverConfigPath, "server-config", "configs/server.yaml", "path to server.yaml")
	rootCmd.PersistentFlags().StringVar(&envConfigPath, "environment-config", "configs/environment.yaml", "path to environment.yaml")
	rootCmd.PersistentFlags().StringVar(&schemaDir, "schema-dir", "schemas/", "directory of request JSON Schemas")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "directory for rotating log files (console only when empty)")
}

// serve opens the graph store, builds the sequence unit, and runs the HTTP
// and AMQP front ends concurrently until ctx is cancelled (spec §5: the
// two front ends run in one process, each a goroutine in an errgroup,
// drained together at the next I/O boundary on SIGINT/SIGTERM).
func serve(ctx context.Context) error {
	driver, err := graph.Open(ctx, cfg.Environment.Database.URI, graph.DefaultConnectTimeout)
	if err != nil {
		return err
	}
	defer driver.Close()

	validator := validation.NewValidator()
	if err := validator.LoadDir(cfg.SchemaDir); err != nil {
		return err
	}

	unit := sequence.New(driver)

	httpServer := httpapi.New(unit, cfg.Environment.DefaultParameters, validator)
	srv := &http.Server{
		Addr:    cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler: httpServer.Handler(),
	}

	conn, err := amqpapi.Dial(cfg.Server.Exchange.URI)
	if err != nil {
		return err
	}
	defer conn.Close()

	consumer, err := amqpapi.NewConsumer(conn, cfg.Server.Exchange.Name, cfg.Server.Exchange.Type, unit, cfg.Environment.DefaultParameters)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("HTTP front end listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.Info().Msg("AMQP front end consuming")
		return consumer.Run(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
