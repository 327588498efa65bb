// Package interval provides half-open time ranges at minute granularity.
package interval

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrInvalidRange indicates an interval that ends before it begins.
	ErrInvalidRange = errors.New("interval must begin before it ends")
	// ErrEmptyInterval indicates an interval with begin == end.
	// Callers may treat it as "too short to matter".
	ErrEmptyInterval = errors.New("interval must not be empty")
)

// Granularity is the finest unit an Interval keeps.
const Granularity = time.Minute

// Interval is a half-open [begin, end) range.
// The zero value is not a valid interval; use New.
type Interval struct {
	begin time.Time
	end   time.Time
}

// New creates an interval, dropping seconds and below from both bounds.
func New(begin, end time.Time) (Interval, error) {
	b := Truncate(begin)
	e := Truncate(end)
	if b.After(e) {
		return Interval{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, b.Format(time.RFC3339), e.Format(time.RFC3339))
	}
	if b.Equal(e) {
		return Interval{}, fmt.Errorf("%w: begin == end == %s", ErrEmptyInterval, b.Format(time.RFC3339))
	}
	return Interval{begin: b, end: e}, nil
}

// MustNew is like New but panics on error. Intended for tests and constants.
func MustNew(begin, end time.Time) Interval {
	iv, err := New(begin, end)
	if err != nil {
		panic(err)
	}
	return iv
}

// Truncate drops seconds and below. It also strips the monotonic reading so
// truncated times compare reliably.
func Truncate(t time.Time) time.Time {
	return t.Truncate(Granularity)
}

// Begin returns the inclusive start.
func (iv Interval) Begin() time.Time { return iv.begin }

// End returns the exclusive end.
func (iv Interval) End() time.Time { return iv.end }

// IsZero reports whether iv is the zero value.
func (iv Interval) IsZero() bool {
	return iv.begin.IsZero() && iv.end.IsZero()
}

// Duration returns end - begin.
func (iv Interval) Duration() time.Duration {
	return iv.end.Sub(iv.begin)
}

// Intersects reports whether the two intervals share at least one instant.
func (iv Interval) Intersects(other Interval) bool {
	return iv.end.After(other.begin) && other.end.After(iv.begin)
}

// Equal reports whether both bounds are the same instants.
func (iv Interval) Equal(other Interval) bool {
	return iv.begin.Equal(other.begin) && iv.end.Equal(other.end)
}

// Compare orders by begin, then end. It returns -1, 0 or +1.
func (iv Interval) Compare(other Interval) int {
	if c := iv.begin.Compare(other.begin); c != 0 {
		return c
	}
	return iv.end.Compare(other.end)
}

// Before reports whether iv sorts before other.
func (iv Interval) Before(other Interval) bool {
	return iv.Compare(other) < 0
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.begin.Format("2006-01-02 15:04"), iv.end.Format("2006-01-02 15:04"))
}

// Sort orders intervals by (begin, end) in place.
func Sort(ivs []Interval) {
	sort.SliceStable(ivs, func(i, j int) bool { return ivs[i].Before(ivs[j]) })
}

// Total returns the summed duration of ivs.
func Total(ivs []Interval) time.Duration {
	var d time.Duration
	for _, iv := range ivs {
		d += iv.Duration()
	}
	return d
}
