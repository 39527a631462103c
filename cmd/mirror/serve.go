package main

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/t13-mirror/internal/oracle"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the configured oracle backend over gRPC",
	Long: `serve wraps the configured backend (anthropic or gemini) in the gRPC
oracle service so sweeps elsewhere can use --backend grpc against it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Oracle.Backend == oracle.BackendGRPC {
			return fmt.Errorf("serve needs a model backend, not %q", oracle.BackendGRPC)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := oracle.New(ctx, cfg.OracleConfig(), logger)
		if err != nil {
			return fmt.Errorf("create oracle: %w", err)
		}
		defer client.Close()

		lis, err := net.Listen("tcp", listenAddr)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		srv := grpc.NewServer()
		oracle.RegisterServer(srv, client)

		go func() {
			<-ctx.Done()
			srv.GracefulStop()
		}()
		logger.Info("oracle server listening",
			zap.String("addr", lis.Addr().String()),
			zap.String("backend", cfg.Oracle.Backend))
		if err := srv.Serve(lis); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:50713", "Address to listen on")
}
