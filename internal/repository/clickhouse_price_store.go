package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockPilot/internal/domain/models"
	domrepo "StockPilot/internal/domain/repository"
	pkgch "StockPilot/pkg/clickhouse"
	"StockPilot/pkg/logger"
)

const DefaultBarsTable = "daily_bars"

// PriceSchema returns the DDL for the daily bar table. Re-inserted days
// replace older rows on merge; reads use FINAL.
func PriceSchema(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    symbol     LowCardinality(String),
    date       Date,
    open       Float64,
    high       Float64,
    low        Float64,
    close      Float64,
    volume     Int64,
    updated_at DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree(updated_at)
ORDER BY (symbol, date)`, table),
	}
}

// CHPriceStore implements PriceStore on ClickHouse.
type CHPriceStore struct {
	ch    *pkgch.Client
	db    *sql.DB
	table string
	l     *logger.Logger
}

func NewCHPriceStore(ch *pkgch.Client, l *logger.Logger) *CHPriceStore {
	if l == nil {
		l = logger.NewNop()
	}
	return &CHPriceStore{ch: ch, db: ch.DB(), table: DefaultBarsTable, l: l}
}

func (s *CHPriceStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, PriceSchema(s.table))
}

func (s *CHPriceStore) Bars(ctx context.Context, symbol string, from time.Time) ([]models.PriceBar, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, selectBarsQuery(s.table), strings.ToUpper(symbol), from.UTC())
	if err != nil {
		s.l.Error("clickhouse bars query error", logger.String("symbol", symbol), logger.Error(err))
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceBar, 0, 256)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Date = b.Date.UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("clickhouse bars loaded",
		logger.String("symbol", symbol),
		logger.Int("rows", len(out)),
		logger.Duration("elapsed_ms", time.Since(start)))
	return out, nil
}

// StoreBars inserts bars in one batch.
func (s *CHPriceStore) StoreBars(ctx context.Context, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertBarsQuery(s.table))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, b := range bars {
		if b.Symbol == "" || b.Date.IsZero() || b.Close <= 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, strings.ToUpper(b.Symbol), b.Date.UTC(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append bar: %w", err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.l.Debug("clickhouse bars stored", logger.String("symbol", bars[0].Symbol), logger.Int("rows", n))
	return nil
}

func (s *CHPriceStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the client is closed by its owner.
func (s *CHPriceStore) Close() error {
	return nil
}

func selectBarsQuery(table string) string {
	return fmt.Sprintf(`SELECT symbol, date, open, high, low, close, volume
FROM %s FINAL
WHERE symbol = ? AND date >= ?
ORDER BY date ASC`, table)
}

func insertBarsQuery(table string) string {
	return fmt.Sprintf("INSERT INTO %s (symbol, date, open, high, low, close, volume)", table)
}

var _ domrepo.PriceStore = (*CHPriceStore)(nil)
