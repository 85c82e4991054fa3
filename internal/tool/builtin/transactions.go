package builtin

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"txagent/internal/store"
	"txagent/internal/tool"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/shopspring/decimal"
)

const (
	TransactionsToolName = "get_client_transactions"

	// DefaultLimit applies when the caller omits limit.
	DefaultLimit = 100

	dateLayout = "2006-01-02"
)

// TransactionRecord is one financial event as read from the store.
type TransactionRecord struct {
	TransactionID string          `json:"transaction_id"`
	Date          string          `json:"dt"` // YYYY-MM-DD
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Counterparty  string          `json:"counterparty"`
}

// QueryFilter selects transactions. Nil dates are unbounded; bounds are inclusive.
type QueryFilter struct {
	StartDate *string
	EndDate   *string
	Limit     int
}

// Metadata describes pagination of a QueryResult.
type Metadata struct {
	Limit    int  `json:"limit"`
	Returned int  `json:"returned"`
	HasMore  bool `json:"has_more"`
}

// QueryResult is the structured payload handed back to the model.
type QueryResult struct {
	Metadata     Metadata            `json:"meta"`
	Transactions []TransactionRecord `json:"transactions"`
}

// ConnScope hands out one store connection per call.
type ConnScope interface {
	WithConn(ctx context.Context, fn func(ctx context.Context, q store.Querier) error) error
	Dialect() store.Dialect
}

// TransactionsTool reads client transactions without altering or interpreting them
type TransactionsTool struct {
	store ConnScope
}

func NewTransactionsTool(s ConnScope) *TransactionsTool {
	return &TransactionsTool{store: s}
}

func (t *TransactionsTool) Name() string {
	return TransactionsToolName
}

func (t *TransactionsTool) Description() string {
	return `Returns only factual records of the client's financial transactions within the query parameters.
The method provides unaltered primary data in read-only mode and adds no interpretation, inference or summary.
The result contains no assessments, forecasts or recommendations.
Any analytical processing of the data must be performed by the assistant according to the system rules.
The result is returned in a structured machine-readable format (meta + transactions).`
}

func (t *TransactionsTool) BestPractices() string {
	return `**get_client_transactions**:
1. Pass explicit startDate/endDate (YYYY-MM-DD) for questions about a period; resolve relative periods with get_current_date first
2. When meta.has_more is true the list is incomplete: say so, or narrow the period before drawing conclusions
3. An empty transactions list means the data holds no information for the question`
}

func (t *TransactionsTool) Parameters() *jsonschema.Schema {
	minLimit := 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"startDate": {
				Type:        "string",
				Description: "Start of the period, inclusive (YYYY-MM-DD)",
			},
			"endDate": {
				Type:        "string",
				Description: "End of the period, inclusive (YYYY-MM-DD)",
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of records to return (positive integer)",
				Minimum:     &minLimit,
				Default:     json.RawMessage(fmt.Sprint(DefaultLimit)),
			},
		},
	}
}

func (t *TransactionsTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	var p struct {
		StartDate *string `json:"startDate"`
		EndDate   *string `json:"endDate"`
		Limit     *int    `json:"limit"`
	}

	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", tool.ErrInvalidArgument, err)
	}

	filter := QueryFilter{
		StartDate: presentOrNil(p.StartDate),
		EndDate:   presentOrNil(p.EndDate),
		Limit:     DefaultLimit,
	}
	if p.Limit != nil {
		filter.Limit = *p.Limit
	}

	result, err := t.Retrieve(ctx, filter)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	res := tool.OK(string(out))
	res.Data = map[string]any{
		"returned": result.Metadata.Returned,
		"has_more": result.Metadata.HasMore,
	}
	return res, nil
}

// Retrieve returns at most filter.Limit transactions ordered by date. It asks
// the store for Limit+1 rows: the extra row only sets has_more and is dropped.
func (t *TransactionsTool) Retrieve(ctx context.Context, filter QueryFilter) (*QueryResult, error) {
	if filter.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer, got %d", tool.ErrInvalidArgument, filter.Limit)
	}

	var result *QueryResult
	err := t.store.WithConn(ctx, func(ctx context.Context, q store.Querier) error {
		query, args, err := buildTransactionsQuery(t.store.Dialect(), filter)
		if err != nil {
			return err
		}

		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: %v", store.ErrQuery, err)
		}
		defer rows.Close()

		result, err = collectTransactions(rows, filter.Limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get transactions: %w", tool.ErrStoreQuery, err)
	}

	return result, nil
}

func buildTransactionsQuery(d store.Dialect, filter QueryFilter) (string, []any, error) {
	where, args := []string{"1 = 1"}, []any{}

	if filter.StartDate != nil {
		date, err := normalizeDate(*filter.StartDate)
		if err != nil {
			return "", nil, fmt.Errorf("%w: startDate: %v", store.ErrQuery, err)
		}
		args = append(args, date)
		where = append(where, "dt >= "+d.Placeholder(len(args)))
	}

	if filter.EndDate != nil {
		date, err := normalizeDate(*filter.EndDate)
		if err != nil {
			return "", nil, fmt.Errorf("%w: endDate: %v", store.ErrQuery, err)
		}
		args = append(args, date)
		where = append(where, "dt <= "+d.Placeholder(len(args)))
	}

	args = append(args, filter.Limit+1)
	query := fmt.Sprintf(
		`SELECT transaction_id, dt, amount, currency, counterparty
		 FROM transactions
		 WHERE %s
		 ORDER BY dt ASC
		 LIMIT %s`,
		strings.Join(where, " AND "), d.Placeholder(len(args)),
	)

	return query, args, nil
}

func collectTransactions(rows *sql.Rows, limit int) (*QueryResult, error) {
	result := &QueryResult{
		Metadata:     Metadata{Limit: limit},
		Transactions: make([]TransactionRecord, 0),
	}

	for rows.Next() {
		if len(result.Transactions) == limit {
			result.Metadata.HasMore = true
			break
		}

		var rec TransactionRecord
		var dt string
		if err := rows.Scan(&rec.TransactionID, &dt, &rec.Amount, &rec.Currency, &rec.Counterparty); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %v", store.ErrQuery, err)
		}

		date, err := storedDate(dt)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %s: %v", store.ErrQuery, rec.TransactionID, err)
		}
		rec.Date = date

		result.Transactions = append(result.Transactions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", store.ErrQuery, err)
	}

	result.Metadata.Returned = len(result.Transactions)
	return result, nil
}

func normalizeDate(s string) (string, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("malformed date %q, expected YYYY-MM-DD", s)
	}
	return d.Format(dateLayout), nil
}

// storedDate reduces the driver's date rendering (text date, RFC 3339
// timestamp from DATE columns) to YYYY-MM-DD.
func storedDate(raw string) (string, error) {
	if len(raw) < len(dateLayout) {
		return "", fmt.Errorf("malformed stored date %q", raw)
	}
	return normalizeDate(raw[:len(dateLayout)])
}

// presentOrNil treats blank strings like an omitted bound.
func presentOrNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
