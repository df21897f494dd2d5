package monitor

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/vadiminshakov/btccmon/internal/domain"
)

// Exchange is the signed trade API.
type Exchange interface {
	HasCredentials() bool
	GetMarketDepth(ctx context.Context, limit int, market string) (domain.MarketDepth, error)
	GetAccountInfo(ctx context.Context) (domain.AccountInfo, error)
	GetOrder(ctx context.Context, id int64, market string) (domain.Order, error)
}

// TradeHistory is the public trade feed.
type TradeHistory interface {
	GetTrades(ctx context.Context, market string, limit int) ([]domain.Trade, error)
}

// Settings controls what a tick fetches.
type Settings struct {
	Market       string
	DepthLimit   int
	TradesLimit  int
	Orders       []int64
	PollInterval time.Duration
}

// Monitor polls the exchange and reports what it sees through the logger.
type Monitor struct {
	exchange Exchange
	trades   TradeHistory
	settings Settings
	l        *zap.Logger

	lastTID   string
	skipNoted bool
}

// New creates a monitor. A non-positive poll interval defaults to one minute.
func New(l *zap.Logger, exchange Exchange, trades TradeHistory, settings Settings) *Monitor {
	if settings.PollInterval <= 0 {
		settings.PollInterval = time.Minute
	}
	return &Monitor{
		exchange: exchange,
		trades:   trades,
		settings: settings,
		l:        l.With(zap.String("market", settings.Market)),
	}
}

// Run ticks immediately and then every poll interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.settings.PollInterval)
	defer ticker.Stop()

	m.l.Info("Starting monitor loop", zap.Duration("poll_interval", m.settings.PollInterval),
		zap.Bool("signed_calls", m.exchange.HasCredentials()))

	m.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			m.l.Info("Context done, stopping monitor loop")
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	if err := m.Tick(ctx); err != nil {
		m.l.Debug("Tick finished with errors", zap.Error(err))
	}
}

// Tick runs a single polling round. The public trade feed is always read;
// market depth, account and orders need API credentials. Every failure is
// logged and the combined error is returned.
func (m *Monitor) Tick(ctx context.Context) error {
	err := m.checkTrades(ctx)

	if !m.exchange.HasCredentials() {
		if !m.skipNoted {
			m.l.Info("No API credentials, skipping market depth, account and orders")
			m.skipNoted = true
		}
		return err
	}

	err = multierr.Append(err, m.checkDepth(ctx))
	err = multierr.Append(err, m.checkAccount(ctx))
	for _, id := range m.settings.Orders {
		err = multierr.Append(err, m.checkOrder(ctx, id))
	}
	return err
}

func (m *Monitor) checkDepth(ctx context.Context) error {
	depth, err := m.exchange.GetMarketDepth(ctx, m.settings.DepthLimit, m.settings.Market)
	if err != nil {
		m.l.Error("Failed to fetch market depth", zap.Error(err))
		return errors.Wrap(err, "market depth")
	}

	bid, hasBid := depth.BestBid()
	ask, hasAsk := depth.BestAsk()
	if !hasBid || !hasAsk {
		m.l.Warn("Order book side is empty",
			zap.Int("bids", len(depth.Bids)),
			zap.Int("asks", len(depth.Asks)),
			zap.Time("server_time", depth.ServerTime))
		return nil
	}

	m.l.Info("Market depth",
		zap.String("best_bid", bid.Price.String()),
		zap.String("best_ask", ask.Price.String()),
		zap.String("spread", ask.Price.Sub(bid.Price).String()),
		zap.Time("server_time", depth.ServerTime))
	return nil
}

func (m *Monitor) checkTrades(ctx context.Context) error {
	trades, err := m.trades.GetTrades(ctx, m.settings.Market, m.settings.TradesLimit)
	if err != nil {
		m.l.Error("Failed to fetch trade history", zap.Error(err))
		return errors.Wrap(err, "trade history")
	}
	if len(trades) == 0 {
		m.l.Info("No recent trades")
		return nil
	}

	last := trades[len(trades)-1]
	if last.TID == m.lastTID {
		m.l.Debug("No new trades", zap.String("tid", last.TID))
		return nil
	}
	m.lastTID = last.TID

	m.l.Info("Last trade",
		zap.String("tid", last.TID),
		zap.String("type", last.Type),
		zap.String("price", last.Price.String()),
		zap.String("amount", last.Amount.String()),
		zap.Time("at", last.DateTyped()),
		zap.Int("fetched", len(trades)))
	return nil
}

func (m *Monitor) checkAccount(ctx context.Context) error {
	info, err := m.exchange.GetAccountInfo(ctx)
	if err != nil {
		m.l.Error("Failed to fetch account info", zap.Error(err))
		return errors.Wrap(err, "account info")
	}

	m.checkSplits("balance", info.Balance)
	m.checkSplits("frozen", info.Frozen)

	m.l.Info("Account balance",
		zap.String("user", info.Profile.Username),
		zap.Stringer("permissions", info.Profile.APIKeyPermission),
		zap.Stringer("btc", info.Balance.BTC),
		zap.Stringer("ltc", info.Balance.LTC),
		zap.Stringer("cny", info.Balance.CNY),
		zap.Stringer("frozen_btc", info.Frozen.BTC),
		zap.Stringer("frozen_ltc", info.Frozen.LTC),
		zap.Stringer("frozen_cny", info.Frozen.CNY))
	return nil
}

func (m *Monitor) checkSplits(group string, assets domain.Assets) {
	for _, a := range []domain.Amount{assets.BTC, assets.LTC, assets.CNY} {
		if a.Consistent() {
			continue
		}
		m.l.Warn("Amount does not match its integer/decimal split",
			zap.String("group", group),
			zap.String("currency", a.Currency),
			zap.String("amount", a.Amount),
			zap.String("split", a.Display()))
	}
}

func (m *Monitor) checkOrder(ctx context.Context, id int64) error {
	order, err := m.exchange.GetOrder(ctx, id, m.settings.Market)
	if err != nil {
		m.l.Error("Failed to fetch order", zap.Int64("order_id", id), zap.Error(err))
		return errors.Wrapf(err, "order %d", id)
	}

	if !order.Status.IsKnown() {
		m.l.Warn("Order has unknown status",
			zap.Int64("order_id", order.ID),
			zap.String("status", order.Status.Raw()))
		return nil
	}

	m.l.Info("Order",
		zap.Int64("order_id", order.ID),
		zap.String("type", string(order.Type)),
		zap.Stringer("status", order.Status),
		zap.String("price", order.Price.String()),
		zap.String("amount", order.Amount.String()),
		zap.Time("placed", order.Placed))
	return nil
}
