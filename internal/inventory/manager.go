package inventory

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Manager owns the inventory and its action log.
type Manager struct {
	mu     sync.Mutex
	items  []Item
	log    []Entry
	ids    *Clock
	seq    *Clock
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. Mutations log at Debug, rejected
// operations at Warn. The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New returns an empty Manager whose first item id is 1.
func New(opts ...Option) *Manager {
	m := &Manager{
		items:  []Item{},
		log:    []Entry{},
		ids:    NewClock(),
		seq:    NewClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddItem creates an item with the given freshness and appends it.
// Returns *ValidationError if freshness is outside [MinFreshness, MaxFreshness].
func (m *Manager) AddItem(freshness int) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if freshness < MinFreshness || freshness > MaxFreshness {
		m.logger.Warn("add rejected", "freshness", freshness)
		return Item{}, &ValidationError{
			Field: "freshness",
			Value: freshness,
			Min:   MinFreshness,
			Max:   MaxFreshness,
		}
	}

	item := Item{ID: int(m.ids.Next()), Freshness: freshness}
	m.items = append(m.items, item)
	e := m.record(ActionAdd, item)

	m.logger.Debug("item added", "id", item.ID, "freshness", item.Freshness, "seq", e.Seq)
	return item, nil
}

// RemoveItem removes the item with the given id. Unknown ids are a no-op.
func (m *Manager) RemoveItem(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.items, func(it Item) bool { return it.ID == id })
	if idx < 0 {
		m.logger.Debug("remove skipped, unknown id", "id", id)
		return
	}

	m.items = slices.Delete(m.items, idx, idx+1)
	e := m.record(ActionRemove, Removal{ID: id})

	m.logger.Debug("item removed", "id", id, "seq", e.Seq)
}

// Items returns a copy of the items in stored order.
func (m *Manager) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Distribute hands the first len(recipients) items to recipients by position
// and removes them from the inventory. Returns *InsufficientInventoryError if
// there are fewer items than recipients and *ValidationError if a recipient
// is not valid UTF-8.
//
// Recipient names are stored and returned in NFC, so a name typed with
// combining accents and its precomposed spelling are the same recipient.
func (m *Manager) Distribute(recipients []string) ([]Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names, err := normalizeRecipients(recipients)
	if err != nil {
		m.logger.Warn("distribute rejected", "error", err)
		return nil, err
	}

	if len(names) > len(m.items) {
		m.logger.Warn("distribute rejected",
			"recipients", len(recipients),
			"available", len(m.items),
		)
		return nil, &InsufficientInventoryError{
			Requested: len(recipients),
			Available: len(m.items),
		}
	}

	allocs := make([]Allocation, len(names))
	for i, r := range names {
		allocs[i] = Allocation{Recipient: r, Item: m.items[i]}
	}
	if len(allocs) == 0 {
		return allocs, nil
	}

	m.items = slices.Delete(m.items, 0, len(allocs))
	e := m.record(ActionDistribute, Distribution{Allocations: append([]Allocation{}, allocs...)})

	m.logger.Debug("items distributed", "count", len(allocs), "seq", e.Seq)
	return allocs, nil
}

// SortByFreshness orders items by descending freshness. Items with equal
// freshness keep their relative order.
func (m *Manager) SortByFreshness() {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := itemIDs(m.items)
	slices.SortStableFunc(m.items, func(a, b Item) int {
		return cmp.Compare(b.Freshness, a.Freshness)
	})
	after := itemIDs(m.items)
	if slices.Equal(before, after) {
		return
	}

	e := m.record(ActionSort, Reorder{IDs: after})
	m.logger.Debug("items sorted", "count", len(after), "seq", e.Seq)
}

// RemoveSpoiled removes every spoiled item and returns them in their original
// relative order. The returned slice is empty, not nil, when nothing spoiled.
func (m *Manager) RemoveSpoiled() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	spoiled := []Item{}
	kept := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		if it.Spoiled() {
			spoiled = append(spoiled, it)
		} else {
			kept = append(kept, it)
		}
	}
	if len(spoiled) == 0 {
		return spoiled
	}

	m.items = kept
	e := m.record(ActionRemoveSpoiled, Purge{Items: append([]Item{}, spoiled...)})

	m.logger.Debug("spoiled items removed", "count", len(spoiled), "seq", e.Seq)
	return spoiled
}

// Statistics returns the item count and mean freshness.
func (m *Manager) Statistics() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := len(m.items)
	if total == 0 {
		return Statistics{}
	}

	sum := 0
	for _, it := range m.items {
		sum += it.Freshness
	}
	return Statistics{
		Total:            total,
		AverageFreshness: float64(sum) / float64(total),
	}
}

// ActionsLog returns a deep copy of the action log in append order.
func (m *Manager) ActionsLog() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, len(m.log))
	for i, e := range m.log {
		out[i] = e.deepCopy()
	}
	return out
}

// record appends a hash-chained entry. Callers hold m.mu.
func (m *Manager) record(typ ActionType, p Payload) Entry {
	prev := ""
	if n := len(m.log); n > 0 {
		prev = m.log[n-1].Hash
	}

	e := Entry{
		Seq:      m.seq.Next(),
		Type:     typ,
		Payload:  p,
		PrevHash: prev,
	}
	hash, err := e.ComputeHash()
	if err != nil {
		// Payloads hold ints and recipients already checked by
		// normalizeRecipients, which always encode.
		panic(err)
	}
	e.Hash = hash

	m.log = append(m.log, e)
	return e
}

func normalizeRecipients(recipients []string) ([]string, error) {
	names := make([]string, len(recipients))
	for i, r := range recipients {
		if !utf8.ValidString(r) {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("recipients[%d]", i),
				Value:  r,
				Reason: "must be valid UTF-8",
			}
		}
		names[i] = norm.NFC.String(r)
	}
	return names, nil
}

func itemIDs(items []Item) []int {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
