package inventory

// Freshness bounds. Zero means spoiled.
const (
	MinFreshness = 0
	MaxFreshness = 10

	// SpoiledFreshness is the freshness at which RemoveSpoiled purges an item.
	SpoiledFreshness = 0
)

// Item is a single banana.
type Item struct {
	ID        int `json:"id"`
	Freshness int `json:"freshness"`
}

// Spoiled reports whether the item is at the spoiled threshold.
func (i Item) Spoiled() bool {
	return i.Freshness == SpoiledFreshness
}

// Allocation pairs a recipient with the item handed to them by Distribute.
type Allocation struct {
	Recipient string `json:"recipient"`
	Item      Item   `json:"item"`
}

// Statistics summarizes the current inventory.
//
// AverageFreshness is 0 for an empty inventory.
type Statistics struct {
	Total            int     `json:"total"`
	AverageFreshness float64 `json:"average_freshness"`
}
