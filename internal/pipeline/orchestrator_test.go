package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/llm"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLimiter records how often the orchestrator throttles.
type countingLimiter struct {
	calls atomic.Int32
}

func (c *countingLimiter) Wait(ctx context.Context) error {
	c.calls.Add(1)
	return ctx.Err()
}

func makeTransactions(n int) []model.Transaction {
	txns := make([]model.Transaction, n)
	for i := range txns {
		txns[i] = model.Transaction{
			Date:        fmt.Sprintf("2024-01-%02d", i+1),
			Description: fmt.Sprintf("Purchase %d", i),
			Amount:      float64(i + 1),
		}
	}
	return txns
}

// descriptionOf pulls the description line back out of a request.
func descriptionOf(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if rest, ok := strings.CutPrefix(line, "Description: "); ok {
			return rest
		}
	}
	return ""
}

func TestRunHappyPath(t *testing.T) {
	client := llm.NewStaticMockClient(`{"category": "Meals", "confidence": "high", "is_anomaly": false, "notes": "ok"}`)
	limiter := &countingLimiter{}
	orch := New(client, Options{Limiter: limiter})

	txns := makeTransactions(3)
	records, err := orch.Run(context.Background(), txns, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, rec := range records {
		assert.Equal(t, txns[i], rec.Transaction)
		assert.Equal(t, "Meals", rec.Category)
		assert.Equal(t, model.ConfidenceHigh, rec.Confidence)
	}
	assert.Len(t, client.Calls(), 3)
	assert.Equal(t, int32(2), limiter.calls.Load(), "no throttle after the final call")
}

func TestRunEmpty(t *testing.T) {
	limiter := &countingLimiter{}
	orch := New(llm.NewStaticMockClient("{}"), Options{Limiter: limiter})

	records, err := orch.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, limiter.calls.Load())
}

func TestRunFailureIsolation(t *testing.T) {
	client := llm.NewMockClient(func(prompt string) (string, error) {
		switch descriptionOf(prompt) {
		case "Purchase 1":
			return "", errors.New("service down")
		case "Purchase 2":
			panic("boom")
		case "Purchase 3":
			return "no json here", nil
		default:
			return `{"category": "Travel", "confidence": "medium", "is_anomaly": true, "notes": "flight"}`, nil
		}
	})
	orch := New(client, Options{})

	records, err := orch.Run(context.Background(), makeTransactions(5), nil)
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, "Travel", records[0].Category)
	assert.True(t, records[0].IsAnomaly)

	assert.Equal(t, model.Uncategorized, records[1].Category)
	assert.Equal(t, model.ConfidenceLow, records[1].Confidence)
	assert.Contains(t, records[1].Notes, "service down")

	assert.Equal(t, model.Uncategorized, records[2].Category)
	assert.Contains(t, records[2].Notes, "boom")

	assert.Equal(t, model.FallbackResult(), records[3].ClassificationResult)

	assert.Equal(t, "Travel", records[4].Category)
}

func TestRunAllFailures(t *testing.T) {
	client := llm.NewMockClient(func(string) (string, error) {
		return "", errors.New("unreachable")
	})

	records, err := New(client, Options{}).Run(context.Background(), makeTransactions(4), nil)
	require.NoError(t, err)
	require.Len(t, records, 4)
	for _, rec := range records {
		assert.Equal(t, model.Uncategorized, rec.Category)
		assert.False(t, rec.IsAnomaly)
	}
}

func TestRunPreservesOrderWithWorkers(t *testing.T) {
	client := llm.NewMockClient(func(prompt string) (string, error) {
		desc := descriptionOf(prompt)
		var n int
		_, _ = fmt.Sscanf(desc, "Purchase %d", &n)
		// Later items finish first
		time.Sleep(time.Duration(20-n) * time.Millisecond)
		return fmt.Sprintf(`{"category": "Cat %d"}`, n), nil
	})
	limiter := &countingLimiter{}
	orch := New(client, Options{Concurrency: 4, Limiter: limiter})

	records, err := orch.Run(context.Background(), makeTransactions(20), nil)
	require.NoError(t, err)
	require.Len(t, records, 20)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("Purchase %d", i), rec.Description)
		assert.Equal(t, fmt.Sprintf("Cat %d", i), rec.Category)
	}
	assert.Equal(t, int32(19), limiter.calls.Load())
}

func TestRunProgress(t *testing.T) {
	orch := New(llm.NewStaticMockClient(`{"category": "Meals"}`), Options{Concurrency: 3})

	var mu sync.Mutex
	var seen []Progress
	records, err := orch.Run(context.Background(), makeTransactions(6), func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, p)
	})
	require.NoError(t, err)
	require.Len(t, records, 6)

	require.Len(t, seen, 6)
	for i, p := range seen {
		assert.Equal(t, i+1, p.Completed)
		assert.Equal(t, 6, p.Total)
		assert.NotEmpty(t, p.Current)
	}
	assert.InDelta(t, 1.0, seen[5].Fraction(), 1e-9)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := llm.NewMockClient(func(prompt string) (string, error) {
		if descriptionOf(prompt) == "Purchase 1" {
			cancel()
		}
		return `{"category": "Meals"}`, nil
	})
	orch := New(client, Options{})

	records, err := orch.Run(ctx, makeTransactions(10), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, records)
	assert.Less(t, len(client.Calls()), 10)
}

func TestRunCanceledAfterLastRecordKeepsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := llm.NewMockClient(func(prompt string) (string, error) {
		if descriptionOf(prompt) == "Purchase 2" {
			cancel()
		}
		return `{"category": "Travel"}`, nil
	})
	orch := New(client, Options{})

	records, err := orch.Run(ctx, makeTransactions(3), nil)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.Equal(t, "Travel", rec.Category)
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestStrictCategories(t *testing.T) {
	client := llm.NewMockClient(func(prompt string) (string, error) {
		if descriptionOf(prompt) == "Purchase 0" {
			return `{"category": "pet supplies"}`, nil
		}
		return `{"category": "groceries"}`, nil
	})
	cats := []string{"Groceries", "Rent"}

	t.Run("permissive keeps unknown labels", func(t *testing.T) {
		records, err := New(client, Options{Categories: cats}).Run(context.Background(), makeTransactions(2), nil)
		require.NoError(t, err)
		assert.Equal(t, "pet supplies", records[0].Category)
		assert.Equal(t, "Groceries", records[1].Category)
	})

	t.Run("strict clamps unknown labels", func(t *testing.T) {
		records, err := New(client, Options{Categories: cats, StrictCategories: true}).Run(context.Background(), makeTransactions(2), nil)
		require.NoError(t, err)
		assert.Equal(t, model.Uncategorized, records[0].Category)
		assert.Equal(t, "Groceries", records[1].Category)
	})
}

func TestCategoriesOffered(t *testing.T) {
	client := llm.NewStaticMockClient("{}")
	orch := New(client, Options{Categories: []string{"Rent"}})
	assert.Equal(t, []string{"Rent", model.Uncategorized}, orch.Categories())

	_, err := orch.Run(context.Background(), makeTransactions(1), nil)
	require.NoError(t, err)
	assert.Contains(t, client.Calls()[0], "Available categories: Rent, Uncategorized")
}

func TestProgressFraction(t *testing.T) {
	assert.InDelta(t, 0.5, Progress{Completed: 1, Total: 2}.Fraction(), 1e-9)
	assert.InDelta(t, 1.0, Progress{}.Fraction(), 1e-9)
}
