package projection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/borncamp/adboard-manager/internal/aggregate"
	"github.com/borncamp/adboard-manager/internal/entity"
	derr "github.com/borncamp/adboard-manager/internal/errors"
)

// defaultMultipliers seeds the five months after the current one with
// illustrative growth scenarios. Every value is user editable afterward.
var defaultMultipliers = []float64{2, 3, 6, 1, 0}

// Config holds projection engine configuration.
type Config struct {
	// SessionTTL is how long an untouched session survives.
	SessionTTL time.Duration `mapstructure:"sessionTTL"`
	// HistoryMonths is how far back the engine looks for a base month.
	HistoryMonths int `mapstructure:"historyMonths"`
}

// Row is one projected month. Every projected figure is
// multiplier x the corresponding base month actual, so expenses scale
// identically to revenue under the same multiplier.
type Row struct {
	Month        string          `json:"month"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	AutoDerived  bool            `json:"auto_derived"`
	Revenue      decimal.Decimal `json:"revenue"`
	AdSpend      decimal.Decimal `json:"ad_spend"`
	COGS         decimal.Decimal `json:"cogs"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Expenses     decimal.Decimal `json:"expenses"`
	Profit       decimal.Decimal `json:"profit"`
}

// Session is one user's ephemeral projection state. Rows cover the current
// month plus the five after it; nothing is persisted, an expired session is
// simply rebuilt from actuals.
type Session struct {
	ID         string                  `json:"id"`
	BaseIndex  int                     `json:"base_index"`
	History    []entity.MonthlySummary `json:"history"`
	Rows       []Row                   `json:"rows"`
	ExpiresAt  time.Time               `json:"expires_at"`
	multiplier []decimal.Decimal
	autoIdx    int
}

// snapshot returns a copy safe to hand out of the engine lock. Rows are
// cloned so later recomputes of the stored session cannot race a caller
// encoding the returned value.
func (s *Session) snapshot() *Session {
	cp := *s
	cp.Rows = append([]Row(nil), s.Rows...)
	cp.History = append([]entity.MonthlySummary(nil), s.History...)
	cp.multiplier = nil
	return &cp
}

// Engine builds and mutates projection sessions on top of the monthly
// aggregator output.
type Engine struct {
	agg           *aggregate.Service
	now           func() time.Time
	ttl           time.Duration
	historyMonths int

	mu       sync.RWMutex
	sessions map[string]*Session
}

func New(agg *aggregate.Service, now func() time.Time, c *Config) *Engine {
	ttl := 30 * time.Minute
	history := 12
	if c != nil {
		if c.SessionTTL > 0 {
			ttl = c.SessionTTL
		}
		if c.HistoryMonths > 0 {
			history = c.HistoryMonths
		}
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		agg:           agg,
		now:           now,
		ttl:           ttl,
		historyMonths: history,
		sessions:      make(map[string]*Session),
	}
}

// CreateSession builds a fresh projection from current actuals. The base
// month defaults to the most recent fully complete month with data; the
// current month's multiplier is back-computed from a day-of-month revenue
// extrapolation, the five months after it take the preset sequence.
func (e *Engine) CreateSession(ctx context.Context) (*Session, error) {
	history, err := e.agg.SummarizeRange(ctx, e.historyMonths)
	if err != nil {
		return nil, fmt.Errorf("summarize history: %w", err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no monthly data to project from")
	}

	baseIdx := e.pickBaseMonth(history)

	s := &Session{
		ID:        uuid.New().String(),
		BaseIndex: baseIdx,
		History:   history,
	}
	e.seedMultipliers(s, history)
	e.recompute(s)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.evictExpiredLocked()
	s.ExpiresAt = e.now().Add(e.ttl)
	e.sessions[s.ID] = s
	return s.snapshot(), nil
}

// GetSession returns a copy of the session and bumps its expiry.
func (e *Engine) GetSession(id string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok || e.now().After(s.ExpiresAt) {
		delete(e.sessions, id)
		return nil, derr.ErrNotFound
	}
	s.ExpiresAt = e.now().Add(e.ttl)
	return s.snapshot(), nil
}

// SetBaseMonth re-bases the projection on another historical month and
// recomputes every row.
func (e *Engine) SetBaseMonth(id string, index int) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok || e.now().After(s.ExpiresAt) {
		delete(e.sessions, id)
		return nil, derr.ErrNotFound
	}
	if index < 0 || index >= len(s.History) {
		return nil, fmt.Errorf("base month index %d out of range", index)
	}
	s.BaseIndex = index
	// the auto-derived current month multiplier depends on the base
	// month's revenue, so it is re-derived here
	e.deriveCurrentMultiplier(s)
	e.recompute(s)
	s.ExpiresAt = e.now().Add(e.ttl)
	return s.snapshot(), nil
}

// SetMultiplier overrides one row's multiplier and recomputes. A value of 0
// is legal and projects everything in that month to zero.
func (e *Engine) SetMultiplier(id string, rowIndex int, value decimal.Decimal) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok || e.now().After(s.ExpiresAt) {
		delete(e.sessions, id)
		return nil, derr.ErrNotFound
	}
	if rowIndex < 0 || rowIndex >= len(s.multiplier) {
		return nil, fmt.Errorf("row index %d out of range", rowIndex)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("multiplier must not be negative")
	}
	s.multiplier[rowIndex] = value
	if rowIndex == s.autoIdx {
		s.Rows[rowIndex].AutoDerived = false
	}
	e.recompute(s)
	s.ExpiresAt = e.now().Add(e.ttl)
	return s.snapshot(), nil
}

// DeleteSession drops a session. Dropping an unknown id is not an error.
func (e *Engine) DeleteSession(id string) {
	e.mu.Lock()
	delete(e.sessions, id)
	e.mu.Unlock()
}

// pickBaseMonth returns the most recent complete month that has data, or the
// most recent complete month when none has data.
func (e *Engine) pickBaseMonth(history []entity.MonthlySummary) int {
	last := len(history) - 1
	for i := last; i >= 0; i-- {
		if history[i].Partial {
			continue
		}
		if history[i].HasAdData || history[i].HasShopifyData {
			return i
		}
	}
	if last > 0 && history[last].Partial {
		return last - 1
	}
	return last
}

func (e *Engine) seedMultipliers(s *Session, history []entity.MonthlySummary) {
	s.multiplier = make([]decimal.Decimal, 1+len(defaultMultipliers))
	s.autoIdx = 0

	cur := history[len(history)-1]
	s.Rows = make([]Row, len(s.multiplier))
	s.Rows[0] = Row{Month: cur.MonthLabel(), AutoDerived: true}
	for i, m := range defaultMultipliers {
		s.multiplier[i+1] = decimal.NewFromFloat(m)
		s.Rows[i+1] = Row{Month: cur.Month.AddDate(0, i+1, 0).Format("2006-01")}
	}
	e.deriveCurrentMultiplier(s)
}

// deriveCurrentMultiplier back-computes the current month's multiplier from a
// day-of-month extrapolation of its revenue so far, so the UI shows a
// consistent "x" value next to the hand-entered rows.
func (e *Engine) deriveCurrentMultiplier(s *Session) {
	if s.autoIdx >= len(s.Rows) || !s.Rows[s.autoIdx].AutoDerived {
		return
	}
	cur := s.History[len(s.History)-1]
	base := s.History[s.BaseIndex]

	baseRevenue := base.TotalRevenue()
	if !baseRevenue.IsPositive() {
		s.multiplier[s.autoIdx] = decimal.Zero
		return
	}

	now := e.now().UTC()
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	daysElapsed := now.Day()

	extrapolated := cur.TotalRevenue().
		Mul(decimal.NewFromInt(int64(daysInMonth))).
		Div(decimal.NewFromInt(int64(daysElapsed)))
	s.multiplier[s.autoIdx] = extrapolated.Div(baseRevenue).Round(2)
}

func (e *Engine) recompute(s *Session) {
	base := s.History[s.BaseIndex]
	baseRevenue := base.TotalRevenue()

	for i := range s.Rows {
		m := s.multiplier[i]
		r := &s.Rows[i]
		r.Multiplier = m
		r.Revenue = baseRevenue.Mul(m).Round(2)
		r.AdSpend = base.AdSpend.Mul(m).Round(2)
		r.COGS = base.COGS.Mul(m).Round(2)
		r.ShippingCost = base.ShippingCost.Mul(m).Round(2)
		r.Expenses = r.AdSpend.Add(r.COGS).Add(r.ShippingCost)
		r.Profit = r.Revenue.Sub(r.Expenses)
	}
}

// evictExpiredLocked drops stale sessions. Callers hold e.mu.
func (e *Engine) evictExpiredLocked() {
	now := e.now()
	for id, s := range e.sessions {
		if now.After(s.ExpiresAt) {
			delete(e.sessions, id)
		}
	}
}
