package chart

import "strconv"

// Status is the outcome of comparing an item with the previous snapshot.
type Status int

const (
	StatusNew Status = iota
	StatusUnchanged
	StatusChanged
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Delta is an item's status. Change is the signed playcount difference and
// is only set for StatusChanged.
type Delta struct {
	Status Status `json:"status" yaml:"status"`
	Change int    `json:"change,omitempty" yaml:"change,omitempty"`
}

// Indicator renders the delta as shown next to an item: (NEW), (=), (+5)
// or (-3).
func (d Delta) Indicator() string {
	switch d.Status {
	case StatusUnchanged:
		return "(=)"
	case StatusChanged:
		if d.Change > 0 {
			return "(+" + strconv.Itoa(d.Change) + ")"
		}
		return "(" + strconv.Itoa(d.Change) + ")"
	default:
		return "(NEW)"
	}
}

// ComputeDeltas compares items with the previous snapshot and returns a
// status per item URL. A nil previous snapshot marks every item new.
//
// Each item is judged on its own, so the result does not depend on item
// order.
func ComputeDeltas(items []Item, previous Snapshot) map[string]Delta {
	deltas := make(map[string]Delta, len(items))
	for _, item := range items {
		prev, ok := previous[item.URL]
		switch {
		case !ok:
			deltas[item.URL] = Delta{Status: StatusNew}
		case prev == item.Playcount:
			deltas[item.URL] = Delta{Status: StatusUnchanged}
		default:
			deltas[item.URL] = Delta{Status: StatusChanged, Change: item.Playcount - prev}
		}
	}
	return deltas
}
