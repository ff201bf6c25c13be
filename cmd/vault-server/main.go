// Command vault-server runs the thread-per-connection vault listener of
// spec §5 against a filesystem-backed store.
package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"hermannm.dev/devlog"

	"github.com/webblitchy/securevault/internal/server"
	"github.com/webblitchy/securevault/internal/store/fsstore"
)

var logLevel slog.LevelVar

var rootCmd = &cobra.Command{
	Use:   "vault-server",
	Short: "Multi-tenant encrypted vault server",
	RunE:  runServer,
}

func init() {
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stdout, &devlog.Options{
		Level: &logLevel,
	})))

	rootCmd.Flags().String("listen", "127.0.0.1:1234", "address to listen on")
	rootCmd.Flags().String("data-dir", "./vault-data", "directory to persist company and file records under")
	rootCmd.Flags().Bool("debug", false, "enable debug logging")

	_ = viper.BindPFlags(rootCmd.Flags())
	viper.SetEnvPrefix("VAULT")
	viper.AutomaticEnv()
}

func runServer(cmd *cobra.Command, args []string) error {
	if viper.GetBool("debug") {
		logLevel.Set(slog.LevelDebug)
	}

	listenAddr := viper.GetString("listen")
	dataDir := viper.GetString("data-dir")

	zapLevel := zapcore.InfoLevel
	if viper.GetBool("debug") {
		zapLevel = zapcore.DebugLevel
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	st, err := fsstore.New(dataDir)
	if err != nil {
		return fmt.Errorf("opening store at %s: %w", dataDir, err)
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", listenAddr, err)
	}
	logger.Info("vault server listening", zap.String("addr", listenAddr), zap.String("data_dir", dataDir))

	srv := server.New(st, logger)
	return srv.Serve(ln)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
