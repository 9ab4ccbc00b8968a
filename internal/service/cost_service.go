package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var costCleaner = regexp.MustCompile(`[^0-9.-]+`)

// CostSourceConfig locates the spreadsheets that feed product costs.
type CostSourceConfig struct {
	MappingSpreadsheetID string
	MappingRange         string
	PriceSpreadsheetID   string
	PriceRange           string
	SnapshotFolderID     string
	SnapshotPrefix       string
	FilePause            time.Duration
}

type costService struct {
	repo       ports.ProductCostRepository
	transactor ports.DBTransactor
	sheets     ports.SheetSource
	cfg        CostSourceConfig
	snapshot   *regexp.Regexp
	log        zerolog.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewCostService creates the product cost maintenance service.
func NewCostService(
	repo ports.ProductCostRepository,
	transactor ports.DBTransactor,
	sheets ports.SheetSource,
	cfg CostSourceConfig,
	log zerolog.Logger,
) ports.CostService {
	return &costService{
		repo:       repo,
		transactor: transactor,
		sheets:     sheets,
		cfg:        cfg,
		snapshot:   regexp.MustCompile(`^` + regexp.QuoteMeta(cfg.SnapshotPrefix) + `-(\d{4}-\d{2}-\d{2})`),
		log:        log,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

// skuMapping pairs SKUs with the ASIN their cost is listed under.
type skuMapping struct {
	skus       []string // sheet order, unique
	asinToSKUs map[string][]string
	skuToASIN  map[string]string
}

func (s *costService) readMapping(ctx context.Context) (*skuMapping, error) {
	rows, err := s.sheets.ReadRows(ctx, s.cfg.MappingSpreadsheetID, s.cfg.MappingRange)
	if err != nil {
		return nil, fmt.Errorf("read sku mapping: %w", err)
	}

	m := &skuMapping{asinToSKUs: make(map[string][]string), skuToASIN: make(map[string]string)}
	for _, row := range rows {
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			continue
		}
		sku, asin := row[0], row[1]
		if prev, dup := m.skuToASIN[sku]; dup {
			m.asinToSKUs[prev] = lo.Without(m.asinToSKUs[prev], sku)
		} else {
			m.skus = append(m.skus, sku)
		}
		m.skuToASIN[sku] = asin
		m.asinToSKUs[asin] = append(m.asinToSKUs[asin], sku)
	}
	return m, nil
}

// readPrices returns ASIN -> cost from a price sheet. Column A holds the
// ASIN and column E the cost.
func (s *costService) readPrices(ctx context.Context, spreadsheetID string) (map[string]decimal.Decimal, error) {
	rows, err := s.sheets.ReadRows(ctx, spreadsheetID, s.cfg.PriceRange)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		if len(row) < 5 || row[0] == "" {
			continue
		}
		if cost, ok := parseCost(row[4]); ok {
			prices[row[0]] = cost
		}
	}
	return prices, nil
}

// parseCost strips currency symbols and separators; negatives are rejected.
func parseCost(raw string) (decimal.Decimal, bool) {
	clean := costCleaner.ReplaceAllString(raw, "")
	if clean == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(clean)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func (s *costService) currentCosts(ctx context.Context, m *skuMapping) (map[string]decimal.Decimal, error) {
	prices, err := s.readPrices(ctx, s.cfg.PriceSpreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("read current costs: %w", err)
	}
	out := make(map[string]decimal.Decimal, len(m.skus))
	for _, sku := range m.skus {
		if cost, ok := prices[m.skuToASIN[sku]]; ok {
			out[sku] = cost
		}
	}
	return out, nil
}

// RefreshCurrent compares the price sheet against stored records and
// records every changed cost.
func (s *costService) RefreshCurrent(ctx context.Context) (int, error) {
	m, err := s.readMapping(ctx)
	if err != nil {
		return 0, err
	}
	current, err := s.currentCosts(ctx, m)
	if err != nil {
		return 0, err
	}

	stored, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list product costs: %w", err)
	}
	bySKU := lo.SliceToMap(stored, func(pc domain.ProductCost) (string, domain.ProductCost) { return pc.SKU, pc })

	now := s.now().UTC()
	changed := 0
	for _, sku := range m.skus {
		cost := current[sku]

		pc, exists := bySKU[sku]
		if exists {
			// A record without history is left alone.
			if _, ok := pc.LastEntry(); !ok || !pc.RecordCost(now, cost) {
				continue
			}
		} else {
			pc = domain.ProductCost{SKU: sku}
			pc.RecordCost(now, cost)
		}

		if err := s.repo.Upsert(ctx, &pc); err != nil {
			s.log.Error().Err(err).Str("sku", sku).Msg("costs: upsert failed")
			continue
		}
		changed++
	}

	s.log.Info().Int("skus", len(m.skus)).Int("changed", changed).Msg("costs: current costs refreshed")
	return changed, nil
}

type snapshotFile struct {
	ports.SheetFile
	date time.Time
}

// snapshots lists the dated price snapshots within [from, today], oldest first.
func (s *costService) snapshots(ctx context.Context, from time.Time) ([]snapshotFile, error) {
	files, err := s.sheets.ListFiles(ctx, s.cfg.SnapshotFolderID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	today := s.now().UTC()
	var out []snapshotFile
	for _, f := range files {
		match := s.snapshot.FindStringSubmatch(f.Name)
		if match == nil {
			s.log.Warn().Str("file", f.Name).Msg("costs: snapshot name has no date")
			continue
		}
		date, err := time.Parse(time.DateOnly, match[1])
		if err != nil {
			s.log.Warn().Err(err).Str("file", f.Name).Msg("costs: snapshot date invalid")
			continue
		}
		if date.Before(from) || date.After(today) {
			continue
		}
		out = append(out, snapshotFile{SheetFile: f, date: date})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].date.Before(out[j].date) })
	return out, nil
}

// RebuildAll replaces every product cost record with one rebuilt from the
// dated snapshots since startDate.
func (s *costService) RebuildAll(ctx context.Context, startDate time.Time) (*ports.RebuildResult, error) {
	m, err := s.readMapping(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.currentCosts(ctx, m)
	if err != nil {
		return nil, err
	}
	files, err := s.snapshots(ctx, startDate)
	if err != nil {
		return nil, err
	}

	res := &ports.RebuildResult{SKUs: len(m.skus), WithCurrent: len(current)}
	history := domain.NewHistoryBuilder()

	for i, f := range files {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.FilePause); err != nil {
				return nil, err
			}
		}

		prices, err := s.readPrices(ctx, f.ID)
		if err != nil {
			s.log.Error().Err(err).Str("file", f.Name).Msg("costs: snapshot read failed")
			res.FilesFailed++
			continue
		}
		res.FilesScanned++

		// Deterministic order keeps the builder's output stable.
		asins := lo.Keys(prices)
		sort.Strings(asins)
		for _, asin := range asins {
			for _, sku := range m.asinToSKUs[asin] {
				if history.Observe(sku, f.date, prices[asin]) {
					res.HistoryEntries++
				}
			}
		}
		s.log.Debug().Str("file", f.Name).Int("done", i+1).Int("total", len(files)).Msg("costs: snapshot processed")
	}

	if err := s.replaceAll(ctx, m, current, history); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("skus", res.SKUs).
		Int("files", res.FilesScanned).
		Int("entries", res.HistoryEntries).
		Msg("costs: product costs rebuilt")
	return res, nil
}

func (s *costService) replaceAll(ctx context.Context, m *skuMapping, current map[string]decimal.Decimal, history *domain.HistoryBuilder) error {
	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := s.repo.DeleteAll(ctx, tx); err != nil {
		return err
	}
	for _, sku := range m.skus {
		pc := &domain.ProductCost{
			SKU:         sku,
			CurrentCost: current[sku],
			History:     history.History(sku),
		}
		if err := s.repo.Insert(ctx, tx, pc); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}
