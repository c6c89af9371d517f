// Package pool tracks live containers so that teardown can be checked.
//
// Containers built with list.WithTracker(t) or vector.WithTracker(t) are
// registered until their Close. Close on the tracker fails while any are
// still live, and Report lists them with the call site that built them.
package pool

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/mattn/go-runewidth"

	"blop/diag"
	"blop/internal/engine"
	"blop/list"
	"blop/policy"
)

// ErrNonEmpty is returned by Close while containers are live.
var ErrNonEmpty = errors.New("pool has live containers")

// Record describes one live container.
type Record struct {
	Kind  string
	Name  string
	Site  string
	Since time.Time
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	alias  string
	bridge diag.Bridge
	live   *list.List[Record, policy.Checked]
	closed bool
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithBridge routes tracker warnings to b.
func WithBridge(b diag.Bridge) Option { return func(t *Tracker) { t.bridge = b } }

// New creates a tracker labelled alias.
func New(alias string, opts ...Option) *Tracker {
	t := &Tracker{alias: alias, bridge: diag.Stderr(), now: time.Now}
	for _, o := range opts {
		o(t)
	}
	l, err := list.New[Record, policy.Checked](list.WithBridge(t.bridge), list.WithName(alias))
	if err != nil {
		// policy.Checked is valid and no sentinel is set
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "pool %s", alias))
	}
	t.live = l
	return t
}

type ticket struct {
	t *Tracker
	h list.Handle
}

func (k ticket) Release() { k.t.release(k.h) }

type nopTicket struct{}

func (nopTicket) Release() {}

// Track implements engine.Tracker.
func (t *Tracker) Track(kind, name, site string) engine.Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		diag.Logf(t.bridge, diag.LevelWarning, "%s: %s %q registered after close, not tracked", t.alias, kind, name)
		return nopTicket{}
	}
	h, err := t.live.PushBack(Record{Kind: kind, Name: name, Site: site, Since: t.now()})
	if err != nil {
		diag.Logf(t.bridge, diag.LevelWarning, "%s: %s %q not tracked: %v", t.alias, kind, name, err)
		return nopTicket{}
	}
	return ticket{t: t, h: h}
}

func (t *Tracker) release(h list.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if _, err := t.live.Remove(h); err != nil {
		diag.Logf(t.bridge, diag.LevelWarning, "%s: %s (%s)", t.alias, diag.PoolReleased.Title(), diag.PoolReleased)
	}
}

// Count returns the number of live containers.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live.Len()
}

// Live returns the live containers, oldest first.
func (t *Tracker) Live() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Collect(t.live.Values())
}

// Report writes an aligned table of live containers.
func (t *Tracker) Report(w io.Writer) error {
	recs := t.Live()
	if len(recs) == 0 {
		_, err := fmt.Fprintf(w, "%s: no live containers\n", t.alias)
		return err
	}
	now := t.now()
	rows := [][]string{{"KIND", "NAME", "SITE", "AGE"}}
	for _, r := range recs {
		rows = append(rows, []string{r.Kind, r.Name, r.Site, now.Sub(r.Since).Round(time.Millisecond).String()})
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d live\n", t.alias, len(recs))
	sb.WriteString(Table(rows))
	_, err := io.WriteString(w, sb.String())
	return err
}

// Close fails with ErrNonEmpty while containers are live. A successful Close
// is final; later registrations are ignored with a warning.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	if n := t.live.Len(); n > 0 {
		first, _ := t.live.Front()
		rec, _ := t.live.Get(first)
		diag.Logf(t.bridge, diag.LevelError, "%s: %s (%s)", t.alias, diag.PoolLeaked.Title(), diag.PoolLeaked)
		return errors.WithDetailf(
			errors.Wrapf(ErrNonEmpty, "%s: %d live", t.alias, redact.Safe(n)),
			"first: %s %q from %s", rec.Kind, rec.Name, rec.Site)
	}
	t.closed = true
	return t.live.Close()
}

// Table aligns rows into space-separated columns by display width.
func Table(rows [][]string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	var sb strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
