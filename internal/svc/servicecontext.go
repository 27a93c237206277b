package svc

import (
	"log"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"coinpilot/internal/config"
	"coinpilot/internal/model"
	"coinpilot/pkg/exchange/bithumb"
	"coinpilot/pkg/journal"
	"coinpilot/pkg/trading"
)

type ServiceContext struct {
	Config config.Config

	Exchange *bithumb.Client
	Trader   *trading.Service
	Journal  *journal.Writer

	// DB-backed stores when a DSN is configured, in-memory otherwise.
	DBConn             sqlx.SqlConn
	OrderHistoryModel  model.OrderHistoryModel
	SignalHistoryModel model.SignalHistoryModel
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{
		Config:  c,
		Journal: journal.NewWriter(c.JournalDir),
	}

	if c.Exchange.Value == nil {
		log.Fatalf("exchange config is required (set Exchange.File in the app config)")
	}
	client, err := c.Exchange.Value.DefaultClient()
	if err != nil {
		log.Fatalf("failed to build exchange client: %v", err)
	}
	svc.Exchange = client

	// In test mode writes are simulated: reads hit the real exchange,
	// orders never leave the process.
	var gateway trading.Gateway = client
	if c.IsTestEnv() {
		gateway = trading.NewDryRunGateway(client)
	}

	tradingCfg := c.Trading.Value
	if tradingCfg == nil {
		tradingCfg = trading.DefaultConfig()
	}

	var (
		signals trading.SignalStore
		orders  trading.OrderStore
	)
	if c.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
		svc.DBConn = conn
		svc.OrderHistoryModel = model.NewOrderHistoryModel(conn)
		svc.SignalHistoryModel = model.NewSignalHistoryModel(conn)
		signals = svc.SignalHistoryModel
		orders = svc.OrderHistoryModel
	} else {
		signals = trading.NewMemorySignalStore()
		orders = trading.NewMemoryOrderStore()
	}

	trader, err := trading.NewService(tradingCfg, gateway, signals, orders)
	if err != nil {
		log.Fatalf("failed to build trading service: %v", err)
	}
	svc.Trader = trader

	return svc
}
