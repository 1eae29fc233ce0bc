package filter

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Clause is a compiled WHERE fragment and its bind values in placeholder order
type Clause struct {
	Where  string
	Params []any
}

// Empty reports whether no rule produced a predicate
func (c Clause) Empty() bool {
	return c.Where == ""
}

// String renders the clause with its WHERE keyword, or "" when empty
func (c Clause) String() string {
	if c.Empty() {
		return ""
	}
	return "WHERE " + c.Where
}

// Builder generates parameterized SQL WHERE clauses from filter rules
type Builder struct {
	dialect models.Dialect
	clock   clock
	lg      *zap.Logger
}

// NewBuilder creates a builder for the given dialect
func NewBuilder(dialect models.Dialect, opts ...Option) (*Builder, error) {
	switch dialect {
	case models.MySQL, models.PostgreSQL:
	default:
		return nil, errors.Errorf("unsupported dialect %q", dialect)
	}
	o := newOptions(opts)
	return &Builder{
		dialect: dialect,
		clock:   o.clock(),
		lg:      o.lg,
	}, nil
}

// CompileFilters compiles rules for dialect using UTC and the current time
func CompileFilters(rules []models.FilterRule, dialect models.Dialect) (Clause, error) {
	b, err := NewBuilder(dialect)
	if err != nil {
		return Clause{}, err
	}
	return b.Compile(rules), nil
}

// Dialect returns the dialect the builder emits
func (b *Builder) Dialect() models.Dialect {
	return b.dialect
}

// Compile joins the predicate of every applicable rule with AND. Inert or
// incomplete rules are skipped.
func (b *Builder) Compile(rules []models.FilterRule) Clause {
	var (
		clauses []string
		params  []any
	)
	for _, rule := range rules {
		cond, ok := b.clock.plan(rule)
		if !ok {
			b.lg.Debug("Skip filter rule",
				zap.String("field", rule.Field),
				zap.String("operator", string(rule.Operator)),
			)
			continue
		}
		clause, args := b.buildCondition(cond, len(params)+1)
		clauses = append(clauses, clause)
		params = append(params, args...)
	}
	return Clause{
		Where:  strings.Join(clauses, " AND "),
		Params: params,
	}
}

// buildCondition renders one condition; paramIndex is the next placeholder number
func (b *Builder) buildCondition(cond condition, paramIndex int) (string, []any) {
	column := b.QuoteIdentifier(cond.field)
	p := func(i int) string { return b.placeholder(paramIndex + i) }

	switch cond.kind {
	case condEqual:
		return fmt.Sprintf("%s = %s", column, p(0)), []any{cond.text}
	case condNotEqual:
		return fmt.Sprintf("%s <> %s", column, p(0)), []any{cond.text}
	case condLike, condNotLike:
		op := "LIKE"
		if b.dialect == models.PostgreSQL {
			op = "ILIKE"
		}
		if cond.kind == condNotLike {
			op = "NOT " + op
		}
		return fmt.Sprintf("%s %s %s", b.textExpr(column), op, p(0)), []any{likePattern(cond.text, cond.like)}
	case condGreater:
		return fmt.Sprintf("%s > %s", column, p(0)), []any{cond.num}
	case condLess:
		return fmt.Sprintf("%s < %s", column, p(0)), []any{cond.num}
	case condBlank:
		return fmt.Sprintf("(%s IS NULL OR %s = '')", column, b.textExpr(column)), nil
	case condNotBlank:
		return fmt.Sprintf("(%s IS NOT NULL AND %s <> '')", column, b.textExpr(column)), nil
	case condRange:
		var (
			parts []string
			args  []any
		)
		if !cond.lo.IsZero() {
			op := ">"
			if cond.loIncl {
				op = ">="
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", column, op, p(len(args))))
			args = append(args, cond.lo)
		}
		if !cond.hi.IsZero() {
			op := "<"
			if cond.hiIncl {
				op = "<="
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", column, op, p(len(args))))
			args = append(args, cond.hi)
		}
		return strings.Join(parts, " AND "), args
	}
	return "", nil
}

// QuoteIdentifier quotes a column name for the builder's dialect, doubling
// any embedded quote character.
func (b *Builder) QuoteIdentifier(name string) string {
	return QuoteIdentifier(b.dialect, name)
}

// QuoteIdentifier quotes name for dialect
func QuoteIdentifier(dialect models.Dialect, name string) string {
	if dialect == models.MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (b *Builder) placeholder(n int) string {
	if b.dialect == models.PostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// textExpr casts a column to text so blank and pattern checks work on any type
func (b *Builder) textExpr(column string) string {
	if b.dialect == models.PostgreSQL {
		return fmt.Sprintf("CAST(%s AS TEXT)", column)
	}
	return fmt.Sprintf("CAST(%s AS CHAR)", column)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(v string, mode likeMode) string {
	v = likeEscaper.Replace(v)
	switch mode {
	case likePrefix:
		return v + "%"
	case likeSuffix:
		return "%" + v
	default:
		return "%" + v + "%"
	}
}
