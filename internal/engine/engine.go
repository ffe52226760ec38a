// Package engine wires the four independent pipeline legs into
// a single supervised process: trade-booking→position→risk, market-data→
// algo-execution→execution, pricing→algo-streaming→streaming, and inquiry
// ingest→quote workflow, each with its historical sink attached, plus the
// optional read-only dashboard server.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"treasury-book-engine/internal/config"
	"treasury-book-engine/internal/dashboard"
	"treasury-book-engine/internal/execution"
	"treasury-book-engine/internal/historical"
	"treasury-book-engine/internal/inquiry"
	"treasury-book-engine/internal/marketdata"
	"treasury-book-engine/internal/position"
	"treasury-book-engine/internal/pricing"
	"treasury-book-engine/internal/risk"
	"treasury-book-engine/internal/tradebook"
	"treasury-book-engine/pkg/fabric"
)

// Engine owns every service, listener, and connector in the pipeline and
// supervises the four feed-replay legs plus the optional dashboard server.
type Engine struct {
	cfg *config.Config
	log *slog.Logger

	tradebookSvc *tradebook.Service
	tradeConn    *tradebook.Connector
	positionSvc  *position.Service

	riskSvc *risk.Service

	marketdataSvc  *marketdata.Service
	marketdataConn *marketdata.Connector
	algoExecSvc    *execution.AlgoExecutionService
	execSvc        *execution.Service

	priceSvc      *pricing.PriceService
	priceConn     *pricing.PriceConnector
	algoStreamSvc *pricing.AlgoStreamingService
	streamingSvc  *pricing.StreamingService

	inquirySvc  *inquiry.Service
	inquiryConn *inquiry.Connector

	dashboard *dashboard.Server

	// failCh carries hard sink/connector I/O errors reported by historical
	// listeners and the algo-execution/algo-streaming listeners, which have
	// no error return of their own to propagate through (pkg/fabric.Listener
	// is void). Start watches it alongside the replay legs so a write
	// failure cancels the whole errgroup instead of being silently logged.
	failCh chan error
}

// New wires every service and listener described by cfg. It loads the PV01
// seed table and sector membership table, creates the output directories,
// and returns before any feed has been read — Start actually drives replay.
func New(cfg *config.Config, log *slog.Logger) (*Engine, error) {
	histDir := filepath.Join(cfg.Feeds.OutputDir, "Historical")
	if err := os.MkdirAll(cfg.Feeds.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("engine: create output dir: %w", err)
	}
	if err := os.MkdirAll(histDir, 0o755); err != nil {
		return nil, fmt.Errorf("engine: create historical dir: %w", err)
	}

	pv01Seed, err := config.LoadPV01Table(cfg.Risk.PV01TablePath)
	if err != nil {
		return nil, fmt.Errorf("engine: load pv01 table: %w", err)
	}
	sectors, err := config.LoadSectors(cfg.Risk.SectorsPath)
	if err != nil {
		return nil, fmt.Errorf("engine: load sectors table: %w", err)
	}

	e := &Engine{cfg: cfg, log: log, failCh: make(chan error, 8)}
	var fail fabric.FailFunc = e.reportFailure

	// Trade-booking -> position -> risk leg, plus the position and risk
	// historical sinks.
	e.riskSvc = risk.NewService(pv01Seed, sectors, log.With("service", "risk"))

	e.positionSvc = position.NewService(log.With("service", "position"))
	e.positionSvc.AddListener(risk.NewPositionListener(e.riskSvc))
	e.positionSvc.AddListener(historical.NewPositionListener(filepath.Join(histDir, "position.txt"), log, fail))

	e.tradebookSvc = tradebook.NewService(log.With("service", "tradebook"))
	e.tradebookSvc.AddListener(position.NewTradeListener(e.positionSvc))
	e.tradeConn = tradebook.NewConnector(filepath.Join(cfg.Feeds.InputDir, "trades.txt"), log)

	pv01Hist := historical.NewPV01Listener()
	e.riskSvc.AddListener(pv01Hist)
	e.riskSvc.AddSectorsListener(historical.NewSectorsRiskListener(pv01Hist, filepath.Join(histDir, "risk.txt"), log, fail))

	// Market-data -> algo-execution -> execution leg.
	e.marketdataSvc = marketdata.NewService(log.With("service", "marketdata"))
	e.marketdataConn = marketdata.NewConnector(filepath.Join(cfg.Feeds.InputDir, "marketdata.txt"), log)

	e.algoExecSvc = execution.NewAlgoExecutionService(log.With("service", "algo-execution"))
	e.marketdataSvc.AddListener(execution.NewMarketDataListener(e.algoExecSvc))

	execConn := execution.NewConnector(filepath.Join(cfg.Feeds.OutputDir, "ExecutionOrders.txt"))
	e.execSvc = execution.NewService(execConn, log.With("service", "execution"))
	e.algoExecSvc.AddListener(execution.NewAlgoExecutionListener(e.execSvc, log, fail))
	e.execSvc.AddListener(historical.NewExecutionListener(filepath.Join(histDir, "executions.txt"), log, fail))

	// Pricing -> algo-streaming -> streaming leg.
	e.priceSvc = pricing.NewPriceService(log.With("service", "pricing"))
	e.priceConn = pricing.NewPriceConnector(filepath.Join(cfg.Feeds.InputDir, "prices.txt"), log)

	e.algoStreamSvc = pricing.NewAlgoStreamingService(log.With("service", "algo-streaming"))
	e.priceSvc.AddListener(pricing.NewPriceListener(e.algoStreamSvc))

	streamConn := pricing.NewStreamingConnector(filepath.Join(cfg.Feeds.OutputDir, "PriceStreams.txt"))
	e.streamingSvc = pricing.NewStreamingService(streamConn, log.With("service", "streaming"))
	e.algoStreamSvc.AddListener(pricing.NewAlgoStreamListener(e.streamingSvc, log, fail))
	e.streamingSvc.AddListener(historical.NewStreamingListener(filepath.Join(histDir, "streaming.txt"), log, fail))

	// Inquiry leg. The historical listener is registered before the
	// quote-reply listener so it observes RECEIVED before SendQuote fires
	// (internal/inquiry/service.go's AddListener doc comment).
	e.inquirySvc = inquiry.NewService(inquiry.NewPublishConnector(), log.With("service", "inquiry"))
	e.inquirySvc.AddListener(historical.NewInquiryListener(filepath.Join(histDir, "allinquiries.txt"), log, fail))
	e.inquirySvc.AddListener(inquiry.NewQuoteListener(e.inquirySvc))
	e.inquiryConn = inquiry.NewConnector(filepath.Join(cfg.Feeds.InputDir, "inquiries.txt"), log)

	// Optional dashboard: an independent observer wired onto the streaming,
	// execution, and inquiry services.
	if cfg.Dashboard.Enabled {
		srv, feed := dashboard.NewServer(cfg.Dashboard.Addr, cfg.Dashboard.ThrottleInterval, log)
		e.dashboard = srv
		e.streamingSvc.AddListener(dashboard.NewStreamListener(feed))
		e.execSvc.AddListener(dashboard.NewExecutionListener(feed))
		e.inquirySvc.AddListener(dashboard.NewInquiryListener(feed))
	}

	return e, nil
}

// reportFailure hands err to the fail-watcher goroutine started by Start. It
// never blocks: failCh is buffered, and a full buffer means a hard failure
// is already on its way to stopping the process, so later ones are dropped
// rather than backing up the reporting listener.
func (e *Engine) reportFailure(err error) {
	select {
	case e.failCh <- err:
	default:
	}
}

// Start replays every input feed to its configured record count, one
// goroutine per leg, and runs the dashboard server if enabled. It blocks
// until every leg completes (or ctx is cancelled), returning the first
// error encountered.
func (e *Engine) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	var legs sync.WaitGroup
	leg := func(count int, pull func()) {
		legs.Add(1)
		g.Go(func() error {
			defer legs.Done()
			return replay(ctx, count, pull)
		})
	}
	leg(e.cfg.Feeds.TradeCount, func() { e.tradeConn.Subscribe(e.tradebookSvc) })
	leg(e.cfg.Feeds.MarketDataCount, func() { e.marketdataConn.Subscribe(e.marketdataSvc) })
	leg(e.cfg.Feeds.PriceCount, func() { e.priceConn.Subscribe(e.priceSvc) })
	leg(e.cfg.Feeds.InquiryCount, func() { e.inquiryConn.Subscribe(e.inquirySvc) })
	legsDone := make(chan struct{})
	go func() {
		legs.Wait()
		close(legsDone)
	}()

	// Watches for a hard sink/connector I/O failure reported by a listener
	// that has no error return of its own (fail, threaded in by New). Its
	// non-nil return cancels ctx, which the errgroup propagates to every
	// other leg above. It exits once every replay leg has finished.
	g.Go(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-e.failCh:
			return err
		case <-legsDone:
			select {
			case err := <-e.failCh:
				return err
			default:
				return nil
			}
		}
	})

	if e.dashboard != nil {
		g.Go(func() error {
			if err := e.dashboard.Start(); err != nil {
				return fmt.Errorf("engine: dashboard: %w", err)
			}
			return nil
		})
	}

	e.log.Info("engine started",
		"trade_count", e.cfg.Feeds.TradeCount,
		"price_count", e.cfg.Feeds.PriceCount,
		"market_data_count", e.cfg.Feeds.MarketDataCount,
		"inquiry_count", e.cfg.Feeds.InquiryCount,
		"dashboard_enabled", e.dashboard != nil,
	)

	return g.Wait()
}

// Stop gracefully shuts the dashboard server down, if running.
func (e *Engine) Stop(ctx context.Context) error {
	if e.dashboard == nil {
		return nil
	}
	return e.dashboard.Stop(ctx)
}

// replay calls pull count times, stopping early if ctx is cancelled. Each
// pull reads at most one record; a feed that runs dry before count is
// reached just keeps calling Subscribe, which is a no-op past EOF.
func replay(ctx context.Context, count int, pull func()) error {
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		pull()
	}
	return nil
}
