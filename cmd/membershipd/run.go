package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/mcastellin/membership"
	"github.com/mcastellin/membership/transport"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start a membership node from a config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNode(runConfigPath)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to the node's YAML config file")
	runCmd.MarkFlagRequired("config")
}

func runNode(configPath string) error {
	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gossipInterval, err := cfg.gossipInterval()
	if err != nil {
		return fmt.Errorf("parse gossip_interval: %w", err)
	}

	if cfg.Tracing {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("build trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		defer tp.Shutdown(context.Background())
		otel.SetTracerProvider(tp)
	}

	channelFactory := transport.NewGRPCChannelFactory(
		transport.WithLogger(logger),
		transport.WithTracing(cfg.Tracing),
	)
	defer channelFactory.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	instance, err := membership.NewBuilder(cfg.AdvertisedURL).
		PeerNodes(cfg.PeerNodes).
		FailureDetectorPhiThreshold(cfg.PhiThreshold).
		GossipInterval(gossipInterval).
		TransportChannelFactory(channelFactory).
		Logger(logger).
		Build(ctx)
	if err != nil {
		return fmt.Errorf("build membership instance: %w", err)
	}
	defer instance.Close()

	grpcServer := transport.NewGRPCServer(instance.RPCHandler(),
		transport.WithServerLogger(logger),
		transport.WithServerTracing(cfg.Tracing))

	listener, err := newGRPCListener(cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}
	go func() {
		if err := grpcServer.Serve(listener); err != nil {
			logger.Error("grpc server stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	logger.Info("membershipd starting",
		zap.String("node_id", instance.NodeID().String()),
		zap.String("advertised_url", cfg.AdvertisedURL),
		zap.String("grpc_addr", cfg.GRPCAddr),
		zap.String("http_addr", cfg.HTTPAddr))

	api := newHTTPAPI(cfg.HTTPAddr, instance, logger)
	return api.Serve(ctx)
}

func newGRPCListener(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
