package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := c.get(ctx, "/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (f TransactionFilter) values() url.Values {
	q := url.Values{}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.CategoryID > 0 {
		q.Set("category_id", strconv.Itoa(f.CategoryID))
	}
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// Transactions lists transactions matching f.
func (c *Client) Transactions(ctx context.Context, f TransactionFilter) ([]Transaction, error) {
	if f.Type != "" && !ValidType(f.Type) {
		return nil, fmt.Errorf("%w: type must be income or expense, got %q", ErrInvalidInput, f.Type)
	}
	var txs []Transaction
	if err := c.get(ctx, "/transactions", f.values(), &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Transaction fetches one transaction by id.
func (c *Client) Transaction(ctx context.Context, id int) (*Transaction, error) {
	var tx Transaction
	if err := c.get(ctx, "/transactions/"+strconv.Itoa(id), nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// CreateTransaction records a new transaction. The type tag is checked before
// sending.
func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (*Transaction, error) {
	if !ValidType(in.Type) {
		return nil, fmt.Errorf("%w: type must be income or expense, got %q", ErrInvalidInput, in.Type)
	}
	var raw json.RawMessage
	if err := c.post(ctx, "/transactions", in, &raw); err != nil {
		return nil, err
	}
	return decodeTransaction(raw)
}

// UpdateTransaction applies a partial update to transaction id.
func (c *Client) UpdateTransaction(ctx context.Context, id int, upd TransactionUpdate) (*Transaction, error) {
	if upd.Type != nil && !ValidType(*upd.Type) {
		return nil, fmt.Errorf("%w: type must be income or expense, got %q", ErrInvalidInput, *upd.Type)
	}
	var raw json.RawMessage
	if err := c.put(ctx, "/transactions/"+strconv.Itoa(id), upd, &raw); err != nil {
		return nil, err
	}
	return decodeTransaction(raw)
}

// DeleteTransaction removes transaction id.
func (c *Client) DeleteTransaction(ctx context.Context, id int) (string, error) {
	var res messageResult
	if err := c.delete(ctx, "/transactions/"+strconv.Itoa(id), nil, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// Summary fetches totals for period ("all", "month" or "week").
func (c *Client) Summary(ctx context.Context, period string) (*FinancialSummary, error) {
	if period == "" {
		period = PeriodAll
	}
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
	}
	var s FinancialSummary
	if err := c.get(ctx, "/summary", url.Values{"period": {period}}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// decodeTransaction accepts both {"message", "transaction": {...}} and a bare
// transaction record.
func decodeTransaction(raw json.RawMessage) (*Transaction, error) {
	var env struct {
		Transaction *Transaction `json:"transaction"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: transaction: %v", ErrMalformedResponse, err)
	}
	if env.Transaction != nil {
		return env.Transaction, nil
	}

	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("%w: transaction: %v", ErrMalformedResponse, err)
	}
	if tx.ID == 0 {
		return nil, fmt.Errorf("%w: transaction record has no id", ErrMalformedResponse)
	}
	return &tx, nil
}
