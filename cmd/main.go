// Command btccmon polls a BTC/LTC/CNY exchange over its JSON-RPC trade API and
// public trade feed, keeps a bounded diagnostic log of what it sees and serves
// that log on a small web page.
//
// Usage:
//
//	btccmon --config config.yaml
//	btccmon (uses CLI arguments)
//	btccmon setup [path] (runs the config wizard, then starts)
//
// Optional environment variables, also read from .env:
//
//	BTCC_ACCESS_KEY, BTCC_SECRET_KEY enable account and order checks
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/btccmon/config"
	"github.com/vadiminshakov/btccmon/internal/clients"
	"github.com/vadiminshakov/btccmon/internal/console"
	"github.com/vadiminshakov/btccmon/internal/logbuffer"
	"github.com/vadiminshakov/btccmon/internal/services/monitor"
	"github.com/vadiminshakov/btccmon/internal/setup"
	"github.com/vadiminshakov/btccmon/internal/web"
)

const generatedConfig = "config.gen.yaml"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		path := generatedConfig
		if len(os.Args) > 2 {
			path = os.Args[2]
		}
		if err := setup.RunTUI(path); err != nil {
			log.Fatal(err)
		}
		os.Args = []string{os.Args[0], "--config", path}
	}

	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	buf := logbuffer.New(conf.LogCapacity)
	logger, err := newLogger(buf)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rpc := clients.NewRPCClient(conf.RPCURL, conf.AccessKey, conf.SecretKey)
	trades := clients.NewTradesClient(conf.TradesURL, nil)
	mon := monitor.New(logger, rpc, trades, monitor.Settings{
		Market:       conf.Market,
		DepthLimit:   conf.DepthLimit,
		TradesLimit:  conf.TradesLimit,
		Orders:       conf.WatchOrders,
		PollInterval: conf.PollInterval,
	})
	srv := web.NewServer(conf.WebAddr, buf, conf, logger.Named("web"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mon.Run(gctx)
	})
	g.Go(func() error {
		if len(conf.TLSDomains) > 0 {
			return srv.StartWithAutoTLS(gctx, conf.TLSDomains, conf.CertCacheDir)
		}
		return srv.Start(gctx)
	})

	logger.Info("started", zap.String("market", conf.Market), zap.String("web_addr", conf.WebAddr))

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("stopped", zap.Error(err))
	}

	fmt.Print(console.Render(buf.Entries()))
}

// newLogger builds the production JSON logger teed into the diagnostic buffer.
func newLogger(buf *logbuffer.Buffer) (*zap.Logger, error) {
	base, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, logbuffer.NewCore(buf, zapcore.InfoLevel))
	})), nil
}
