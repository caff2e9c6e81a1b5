package inventory

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/bananas/internal/canon"
)

// ActionType names a logged mutation.
type ActionType string

const (
	ActionAdd           ActionType = "ADD"
	ActionRemove        ActionType = "REMOVE"
	ActionDistribute    ActionType = "DISTRIBUTE"
	ActionRemoveSpoiled ActionType = "REMOVE_SPOILED"
	ActionSort          ActionType = "SORT"
)

// ActionTypes lists every action type in declaration order.
var ActionTypes = []ActionType{
	ActionAdd,
	ActionRemove,
	ActionDistribute,
	ActionRemoveSpoiled,
	ActionSort,
}

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	for _, known := range ActionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DomainEntry separates log entry hashes from any other hash use.
const DomainEntry = "bananas/entry/v1"

// Payload is the data attached to a log entry.
//
// Implemented by Item (ADD), Removal (REMOVE), Distribution (DISTRIBUTE),
// Purge (REMOVE_SPOILED) and Reorder (SORT).
type Payload interface {
	// canonical returns the payload as canonical-JSON-safe values.
	canonical() map[string]any

	// clone returns a deep copy so log snapshots never share slices.
	clone() Payload
}

// Removal is the REMOVE payload: the id of the removed item.
type Removal struct {
	ID int `json:"id"`
}

// Distribution is the DISTRIBUTE payload.
type Distribution struct {
	Allocations []Allocation `json:"allocations"`
}

// Purge is the REMOVE_SPOILED payload: the removed items in original order.
type Purge struct {
	Items []Item `json:"items"`
}

// Reorder is the SORT payload: item ids in their new order.
type Reorder struct {
	IDs []int `json:"ids"`
}

func (i Item) canonical() map[string]any {
	return map[string]any{"id": i.ID, "freshness": i.Freshness}
}

func (i Item) clone() Payload { return i }

func (r Removal) canonical() map[string]any {
	return map[string]any{"id": r.ID}
}

func (r Removal) clone() Payload { return r }

func (d Distribution) canonical() map[string]any {
	allocs := make([]any, len(d.Allocations))
	for i, a := range d.Allocations {
		allocs[i] = map[string]any{
			"recipient": a.Recipient,
			"item":      a.Item.canonical(),
		}
	}
	return map[string]any{"allocations": allocs}
}

func (d Distribution) clone() Payload {
	return Distribution{Allocations: append([]Allocation{}, d.Allocations...)}
}

func (p Purge) canonical() map[string]any {
	return map[string]any{"items": canonicalItems(p.Items)}
}

func (p Purge) clone() Payload {
	return Purge{Items: append([]Item{}, p.Items...)}
}

func (r Reorder) canonical() map[string]any {
	return map[string]any{"ids": append([]int{}, r.IDs...)}
}

func (r Reorder) clone() Payload {
	return Reorder{IDs: append([]int{}, r.IDs...)}
}

func canonicalItems(items []Item) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it.canonical()
	}
	return out
}

// Entry is one record in the action log.
type Entry struct {
	Seq      int64      `json:"seq"`
	Type     ActionType `json:"type"`
	Payload  Payload    `json:"payload"`
	PrevHash string     `json:"prev_hash"`
	Hash     string     `json:"hash"`
}

// Canonical returns the entry without its hash fields, as canonical-JSON-safe
// values. Golden snapshots compare this form.
func (e Entry) Canonical() map[string]any {
	m := map[string]any{
		"seq":  e.Seq,
		"type": string(e.Type),
	}
	if e.Payload != nil {
		m["payload"] = e.Payload.canonical()
	}
	return m
}

// ComputeHash returns the hash the entry should carry given its PrevHash.
func (e Entry) ComputeHash() (string, error) {
	obj := e.Canonical()
	obj["prev_hash"] = e.PrevHash

	data, err := canon.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("entry seq=%d: failed to marshal: %w", e.Seq, err)
	}
	return canon.HashWithDomain(DomainEntry, data), nil
}

// UnmarshalJSON decodes an exported entry, choosing the payload type from
// Type. Unknown types and missing payloads leave Payload nil so VerifyLog
// reports the entry instead of the decoder.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Seq      int64           `json:"seq"`
		Type     ActionType      `json:"type"`
		Payload  json.RawMessage `json:"payload"`
		PrevHash string          `json:"prev_hash"`
		Hash     string          `json:"hash"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p, err := decodePayload(raw.Type, raw.Payload)
	if err != nil {
		return fmt.Errorf("entry seq=%d: %s payload: %w", raw.Seq, raw.Type, err)
	}

	*e = Entry{
		Seq:      raw.Seq,
		Type:     raw.Type,
		Payload:  p,
		PrevHash: raw.PrevHash,
		Hash:     raw.Hash,
	}
	return nil
}

func decodePayload(t ActionType, data json.RawMessage) (Payload, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	switch t {
	case ActionAdd:
		return decodeAs[Item](data)
	case ActionRemove:
		return decodeAs[Removal](data)
	case ActionDistribute:
		return decodeAs[Distribution](data)
	case ActionRemoveSpoiled:
		return decodeAs[Purge](data)
	case ActionSort:
		return decodeAs[Reorder](data)
	default:
		return nil, nil
	}
}

func decodeAs[T Payload](data json.RawMessage) (Payload, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (e Entry) deepCopy() Entry {
	if e.Payload != nil {
		e.Payload = e.Payload.clone()
	}
	return e
}

// VerifyLog recomputes the hash chain of entries.
//
// It checks that Seq strictly increases, that each PrevHash matches the
// preceding Hash (empty for the first entry), and that each Hash matches the
// entry's content. The first failure is returned as an *IntegrityError.
func VerifyLog(entries []Entry) error {
	prev := ""
	var lastSeq int64
	for _, e := range entries {
		if e.Seq <= lastSeq {
			return &IntegrityError{Seq: e.Seq, Reason: fmt.Sprintf("seq not increasing (previous %d)", lastSeq)}
		}
		if !e.Type.Valid() {
			return &IntegrityError{Seq: e.Seq, Reason: fmt.Sprintf("unknown action type %q", e.Type)}
		}
		if e.PrevHash != prev {
			return &IntegrityError{Seq: e.Seq, Reason: "prev_hash does not match preceding entry"}
		}
		want, err := e.ComputeHash()
		if err != nil {
			return &IntegrityError{Seq: e.Seq, Reason: err.Error()}
		}
		if e.Hash != want {
			return &IntegrityError{Seq: e.Seq, Reason: "hash does not match content"}
		}
		prev = e.Hash
		lastSeq = e.Seq
	}
	return nil
}
