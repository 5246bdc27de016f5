package matchmaking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRatingToleranceWidensLinearly(t *testing.T) {
	cfg := Config{}

	assert.Equal(t, 0, RatingTolerance(0, cfg), "a ticket that just joined tolerates no rating gap")
	assert.Equal(t, 0, RatingTolerance(500*time.Millisecond, cfg), "sub-second waits floor to zero")
	assert.Equal(t, 10, RatingTolerance(time.Second, cfg))
	assert.Equal(t, 150, RatingTolerance(15*time.Second, cfg))
	assert.Equal(t, 290, RatingTolerance(29*time.Second, cfg))
}

func TestRatingToleranceCaps(t *testing.T) {
	cfg := Config{}

	assert.Equal(t, 300, RatingTolerance(30*time.Second, cfg))
	assert.Equal(t, 300, RatingTolerance(2*time.Minute, cfg), "the cap holds for the whole search window")
	assert.Equal(t, 300, RatingTolerance(24*time.Hour, cfg))
}

func TestRatingToleranceNeverBridgesLargeGaps(t *testing.T) {
	// Ratings 1000 and 1400 must never pair: the gap of 400 exceeds the
	// cap of 300 no matter how long either side has waited within the
	// two minute search window.
	cfg := Config{}
	gap := 400
	for waited := time.Duration(0); waited <= DefaultSearchTimeout; waited += time.Second {
		assert.Less(t, RatingTolerance(waited, cfg), gap,
			"gap must stay out of reach at wait %s", waited)
	}
}

func TestRatingToleranceNegativeWait(t *testing.T) {
	// Clock skew between app and database must not produce a negative
	// window.
	assert.Equal(t, 0, RatingTolerance(-5*time.Second, Config{}))
}

func TestRatingToleranceCustomTunables(t *testing.T) {
	cfg := Config{TolerancePerSecond: 25, ToleranceCap: 100}

	assert.Equal(t, 50, RatingTolerance(2*time.Second, cfg))
	assert.Equal(t, 100, RatingTolerance(10*time.Second, cfg), "custom cap applies")
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, DefaultSearchTimeout, cfg.SearchTimeout)
	assert.Equal(t, DefaultTolerancePerSecond, cfg.TolerancePerSecond)
	assert.Equal(t, DefaultToleranceCap, cfg.ToleranceCap)
	assert.Equal(t, DefaultRetention, cfg.Retention)

	custom := Config{SearchTimeout: time.Minute, Retention: 10 * time.Minute}.withDefaults()
	assert.Equal(t, time.Minute, custom.SearchTimeout, "explicit values survive")
	assert.Equal(t, 10*time.Minute, custom.Retention)
}
