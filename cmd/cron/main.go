package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"coinpilot/internal/cli"
	"coinpilot/internal/config"
	"coinpilot/internal/svc"
	"coinpilot/pkg/indicators"
	"coinpilot/pkg/journal"
	"coinpilot/pkg/trading"
)

const (
	tradeInterval   = 60 * time.Second // one pipeline invocation per minute
	cycleTimeout    = 45 * time.Second // budget for a single invocation
	shutdownTimeout = 10 * time.Second // grace period for shutdown
)

var configFile = flag.String("f", "etc/coinpilot.yaml", "the config file")

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting trading cron...")

	appCfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] Failed to load app config %s: %v", *configFile, err)
	}

	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(appCfg) {
		log.Printf("  - %s", line)
	}

	ctx := svc.NewServiceContext(*appCfg)

	tradingCfg := appCfg.Trading.Value
	if tradingCfg == nil {
		tradingCfg = trading.DefaultConfig()
	}
	log.Printf("  - Market: %s", tradingCfg.Market)
	log.Printf("  - Candle Count: %d", tradingCfg.CandleCount)
	log.Printf("  - Strategy: %s", tradingCfg.Strategy)
	log.Printf("  - Trade Interval: %s", tradeInterval)

	// Create context for graceful shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runTradeLoop(rootCtx, ctx, tradingCfg)
	}()

	log.Println("[main] Trading cron started. Press Ctrl+C to stop.")

	<-rootCtx.Done()
	log.Println("[main] Shutdown signal received, stopping tasks...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[main] All tasks stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}

	log.Println("[main] Trading cron stopped")
}

// runTradeLoop runs the pipeline on a fixed schedule. Invocations are
// sequential: a slow cycle delays the next tick instead of overlapping it.
func runTradeLoop(ctx context.Context, sctx *svc.ServiceContext, cfg *trading.Config) {
	ticker := time.NewTicker(tradeInterval)
	defer ticker.Stop()

	// Run once immediately on startup
	runCycle(ctx, sctx, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Println("[trade] Stopping trade loop")
			return
		case <-ticker.C:
			runCycle(ctx, sctx, cfg)
		}
	}
}

// runCycle executes one pipeline invocation and journals the outcome.
func runCycle(parentCtx context.Context, sctx *svc.ServiceContext, cfg *trading.Config) {
	if parentCtx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(parentCtx, cycleTimeout)
	defer cancel()

	start := time.Now()
	result, err := sctx.Trader.AnalyzeAndTrade(ctx, cfg.Market, cfg.CandleCount)
	elapsed := time.Since(start)

	rec := &journal.CycleRecord{Market: cfg.Market}
	if err != nil {
		rec.ErrorMessage = err.Error()
		switch {
		case errors.Is(err, trading.ErrInsufficientData):
			log.Printf("[trade] [WARN] insufficient data: %v, took %dms", err, elapsed.Milliseconds())
		case errors.Is(err, trading.ErrOrderExecutionFailed):
			log.Printf("[trade] [ERROR] order execution failed: %v, took %dms", err, elapsed.Milliseconds())
		default:
			log.Printf("[trade] [ERROR] %v, took %dms", err, elapsed.Milliseconds())
		}
	} else {
		rec.Success = true
	}

	if result != nil {
		rec.OrderExecuted = result.OrderExecuted
		rec.OrderStatus = result.OrderStatus
		if n := len(result.Signals); n > 0 {
			rec.Signal = result.Signals[n-1].String()
		}
		if n := len(result.Prices); n > 0 {
			rec.Price = result.Prices[n-1]
		}
		if n := len(result.RSI); n > 0 {
			v := result.RSI[n-1]
			rec.RSI = &v
		}

		if err == nil {
			signal := indicators.Neutral
			if n := len(result.Signals); n > 0 {
				signal = result.Signals[n-1]
			}
			log.Printf("[trade] [OK] signal=%s price=%.2f executed=%t status=%q, took %dms",
				signal, rec.Price, result.OrderExecuted, result.OrderStatus, elapsed.Milliseconds())
		}
	}

	if _, jerr := sctx.Journal.WriteCycle(rec); jerr != nil {
		log.Printf("[trade] [WARN] journal write failed: %v", jerr)
	}
}
