package dashboard

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/Sunsu-Sulution/bear-vault/internal/chart"
	"github.com/Sunsu-Sulution/bear-vault/internal/db/connection"
	"github.com/Sunsu-Sulution/bear-vault/internal/db/metadata"
	"github.com/Sunsu-Sulution/bear-vault/internal/db/query"
	"github.com/Sunsu-Sulution/bear-vault/internal/filter"
	"github.com/Sunsu-Sulution/bear-vault/internal/history"
	"github.com/Sunsu-Sulution/bear-vault/internal/infer"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Sources resolves a connection name to an open source
type Sources interface {
	Get(ctx context.Context, name string) (connection.Source, error)
}

// Recorder persists executed queries
type Recorder interface {
	Add(ctx context.Context, entry history.HistoryEntry) error
}

// Request asks the runner to produce one chart
type Request struct {
	Dashboard string
	Chart     Chart
	// Filters are applied on top of the chart's own filters
	Filters []models.FilterRule
}

// Output is everything a chart run produced
type Output struct {
	Chart     Chart
	Dialect   models.Dialect
	Statement query.Statement
	Columns   []string
	// Rows are the filtered source rows, or the projected and sorted rows
	// for table charts
	Rows  []models.Row
	Types map[string]models.FieldType
	// Filters are the rules as applied, after column resolution for table
	// sources and operator reconciliation for query sources
	Filters  []models.FilterRule
	Result   *models.Result
	Duration time.Duration
}

// SQL renders the executed statement with its parameters inlined
func (o *Output) SQL() string {
	return o.Statement.Render(o.Dialect)
}

// Runner fetches, filters and aggregates chart data
type Runner struct {
	sources    Sources
	recorder   Recorder
	loc        *time.Location
	now        func() time.Time
	limit      int
	sampleSize int
	lg         *zap.Logger
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithRecorder records every executed query
func WithRecorder(r Recorder) RunnerOption {
	return func(rn *Runner) { rn.recorder = r }
}

// WithLocation sets the time zone for date windows and day buckets
func WithLocation(loc *time.Location) RunnerOption {
	return func(rn *Runner) {
		if loc != nil {
			rn.loc = loc
		}
	}
}

// WithClock overrides the current instant used by date filters
func WithClock(now func() time.Time) RunnerOption {
	return func(rn *Runner) {
		if now != nil {
			rn.now = now
		}
	}
}

// WithLimit sets the row limit for charts that do not set their own
func WithLimit(n int) RunnerOption {
	return func(rn *Runner) {
		if n > 0 {
			rn.limit = n
		}
	}
}

// WithSampleSize sets how many rows type inference inspects
func WithSampleSize(n int) RunnerOption {
	return func(rn *Runner) {
		if n > 0 {
			rn.sampleSize = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(lg *zap.Logger) RunnerOption {
	return func(rn *Runner) {
		if lg != nil {
			rn.lg = lg
		}
	}
}

// NewRunner creates a runner reading from sources
func NewRunner(sources Sources, opts ...RunnerOption) *Runner {
	r := &Runner{
		sources:    sources,
		loc:        time.UTC,
		now:        time.Now,
		limit:      1000,
		sampleSize: infer.SampleSize,
		lg:         zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Runner) filterOptions() []filter.Option {
	return []filter.Option{
		filter.WithLocation(r.loc),
		filter.WithClock(r.now),
		filter.WithLogger(r.lg),
	}
}

// Run produces the data for one chart. Table sources are filtered in SQL;
// query sources are fetched whole (up to the limit) and filtered in memory.
func (r *Runner) Run(ctx context.Context, req Request) (*Output, error) {
	c := req.Chart
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid chart")
	}
	lg := r.lg.With(zap.String("chart", c.ID), zap.String("title", c.Title))

	src, err := r.sources.Get(ctx, c.Source.Connection)
	if err != nil {
		return nil, err
	}

	limit := c.Limit
	if limit <= 0 {
		limit = r.limit
	}
	rules := append(append([]models.FilterRule(nil), c.Filters...), req.Filters...)

	out := &Output{Chart: c, Dialect: src.Dialect()}
	var res query.Result
	if c.Source.Table != "" {
		res, out.Filters, err = r.fetchTable(ctx, src, c, rules, limit, lg)
	} else {
		res, out.Filters, err = r.fetchQuery(ctx, src, c, rules, limit, lg)
	}
	out.Statement = res.Statement
	out.Duration = res.Duration
	r.record(ctx, req.Dashboard, c, src.Dialect(), res, lg)
	if err != nil {
		return nil, err
	}
	out.Columns = res.Columns
	out.Rows = res.Rows

	fields := c.Spec.Fields()
	if c.Spec.SortBy != "" {
		fields = append(fields, c.Spec.SortBy)
	}
	out.Types = infer.NewCacheSize(out.Rows, r.loc, r.sampleSize).Types(fields...)

	p := chart.New(r.loc)
	switch c.Kind {
	case KindTable:
		out.Rows = p.Table(out.Rows, c.Spec, out.Types)
	case KindPie:
		res := p.Pie(out.Rows, c.Spec, out.Types)
		out.Result = &res
	default:
		res := p.Aggregate(out.Rows, c.Spec, out.Types)
		out.Result = &res
	}

	lg.Debug("Chart ready",
		zap.Int("rows", len(out.Rows)),
		zap.Duration("duration", out.Duration),
	)
	return out, nil
}

// fetchTable compiles the filters into the SELECT. Referenced fields are
// matched to the table's columns so quoting uses the real names; filters on
// unknown columns are dropped.
func (r *Runner) fetchTable(ctx context.Context, src connection.Source, c Chart, rules []models.FilterRule, limit int, lg *zap.Logger) (query.Result, []models.FilterRule, error) {
	columns, err := metadata.ProbeColumns(ctx, src, c.Source.Table)
	if err != nil {
		return query.Result{}, nil, err
	}

	fields := c.Spec.Fields()
	if c.Kind == KindTable && c.Spec.SortBy != "" && len(fields) > 0 {
		fields = append(fields, c.Spec.SortBy)
	}
	lookup := append(slices.Clone(fields), models.RuleFields(rules)...)
	resolved, missing := metadata.Resolve(columns, lookup)
	for _, f := range missing {
		for _, sf := range fields {
			if sf == f {
				return query.Result{}, nil, errors.Errorf("column %q not found in %s", f, c.Source.Table)
			}
		}
	}

	compiled := make([]models.FilterRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Inert() {
			continue
		}
		actual, ok := resolved[rule.Field]
		if !ok {
			lg.Warn("Drop filter on unknown column", zap.String("field", rule.Field))
			continue
		}
		rule.Field = actual
		compiled = append(compiled, rule)
	}

	b, err := filter.NewBuilder(src.Dialect(), r.filterOptions()...)
	if err != nil {
		return query.Result{}, nil, err
	}

	var selected []string
	seen := make(map[string]bool)
	for _, f := range fields {
		if actual := resolved[f]; !seen[actual] {
			seen[actual] = true
			selected = append(selected, actual)
		}
	}

	stmt, err := query.BuildSelect(src.Dialect(), c.Source.Table, selected, b.Compile(compiled), limit)
	if err != nil {
		return query.Result{}, nil, err
	}
	res, err := query.Execute(ctx, src, stmt)
	return res, compiled, err
}

// fetchQuery runs the wrapped SQL and filters the rows it returned. Each rule
// is first reconciled with the type its field has in those rows.
func (r *Runner) fetchQuery(ctx context.Context, src connection.Source, c Chart, rules []models.FilterRule, limit int, lg *zap.Logger) (query.Result, []models.FilterRule, error) {
	stmt, err := query.WrapSQL(c.Source.SQL, limit)
	if err != nil {
		return query.Result{}, nil, err
	}
	res, err := query.Execute(ctx, src, stmt)
	if err != nil {
		return res, nil, err
	}
	rules = r.reconcile(rules, res.Rows, lg)
	res.Rows = filter.NewEvaluator(r.filterOptions()...).Filter(rules, res.Rows)
	return res, rules, nil
}

// reconcile swaps operators that do not apply to a field's inferred type for
// the type's default. Without rows there is no type to reconcile against.
func (r *Runner) reconcile(rules []models.FilterRule, rows []models.Row, lg *zap.Logger) []models.FilterRule {
	if len(rows) == 0 {
		return rules
	}
	types := infer.NewCacheSize(rows, r.loc, r.sampleSize)
	out := make([]models.FilterRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Inert() {
			out = append(out, rule)
			continue
		}
		t := types.Type(rule.Field)
		next := filter.Reconcile(rule, t)
		if next.Operator != rule.Operator {
			lg.Info("Reconcile filter operator",
				zap.String("field", rule.Field),
				zap.String("type", string(t)),
				zap.String("from", string(rule.Operator)),
				zap.String("to", string(next.Operator)),
			)
		}
		out = append(out, next)
	}
	return out
}

func (r *Runner) record(ctx context.Context, dashboard string, c Chart, dialect models.Dialect, res query.Result, lg *zap.Logger) {
	if r.recorder == nil || res.Statement.SQL == "" {
		return
	}
	entry := history.HistoryEntry{
		Dashboard:      dashboard,
		ChartID:        c.ID,
		ConnectionName: c.Source.Connection,
		Dialect:        string(dialect),
		Query:          strings.TrimSpace(res.Statement.SQL),
		Params:         res.Statement.Params,
		ExecutedAt:     time.Now(),
		Duration:       res.Duration,
		RowsReturned:   int64(len(res.Rows)),
		Success:        res.Error == nil,
	}
	if res.Error != nil {
		entry.ErrorMessage = res.Error.Error()
	}
	if err := r.recorder.Add(ctx, entry); err != nil {
		lg.Warn("Record history", zap.Error(err))
	}
}
