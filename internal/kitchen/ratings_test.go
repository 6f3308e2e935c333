package kitchen

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thallipoli/internal/models"
	"thallipoli/internal/store"
)

func TestRatingFold(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())
	ctx := context.Background()

	var item *models.MenuItem
	var err error
	for i := 0; i < 5; i++ {
		item, err = e.Rate(ctx, "fresh", 5)
		require.NoError(t, err)
	}
	assert.Equal(t, 5.0, item.Rating)
	assert.Equal(t, 5, item.RatingCount)

	item, err = e.Rate(ctx, "fresh", 3)
	require.NoError(t, err)
	assert.Equal(t, 4.67, math.Round(item.Rating*100)/100)
	assert.Equal(t, 6, item.RatingCount)

	stored, err := e.store.GetMenuItem(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, item.Rating, stored.Rating)
}

func TestHighRatingRaisesThresholds(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := e.Rate(ctx, "cheeseburger", 4)
	require.NoError(t, err)

	assert.Equal(t, 11.0, threshold(t, e, "beef"))   // ceil(10.5)
	assert.Equal(t, 21.0, threshold(t, e, "bun"))    // 20*1.05
	assert.Equal(t, 16.0, threshold(t, e, "cheese")) // ceil(15.75)
	assert.Equal(t, 5.0, threshold(t, e, "lettuce"))

	system := logsOfType(t, e, models.LogTypeSystem)
	require.Len(t, system, 2)
	assert.Equal(t, "New rating for Cheeseburger (Chef: Chef Marco): 4/5", system[0].Message)
	assert.Equal(t, "High rating (4/5) for Cheeseburger. Adjusting ingredient safety thresholds for increased demand.", system[1].Message)
}

func TestLowRatingKeepsThresholds(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())
	ctx := context.Background()

	item, err := e.Rate(ctx, "cheeseburger", 3)
	require.NoError(t, err)
	assert.Equal(t, 121, item.RatingCount)

	assert.Equal(t, 10.0, threshold(t, e, "beef"))
	assert.Equal(t, 20.0, threshold(t, e, "bun"))
	assert.Equal(t, 15.0, threshold(t, e, "cheese"))
	assert.Len(t, logsOfType(t, e, models.LogTypeSystem), 1)
}

func TestRatingBounds(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())
	ctx := context.Background()

	for _, r := range []int{0, 6, -1} {
		_, err := e.Rate(ctx, "cheeseburger", r)
		assert.Equal(t, KindInvalidInput, KindOf(err), "rating %d", r)
	}
	_, err := e.Rate(ctx, "nothing", 5)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRaiseThreshold(t *testing.T) {
	cases := map[float64]float64{
		0:   0,
		1:   2,
		10:  11,
		20:  21,
		40:  42,
		100: 105,
	}
	for in, want := range cases {
		assert.Equal(t, want, raiseThreshold(in), "threshold %v", in)
	}
}
