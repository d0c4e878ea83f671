package models

// Visit is a single repair-visit record. Identifiers are sequential
// integers assigned by the server when online; offline creates pick the next
// free local id, which the server echo later confirms or replaces.
//
// A tombstone is a Visit with Deleted=true carrying only ID and UpdatedAt.
type Visit struct {
	ID        int64   `json:"id"`
	Date      int64   `json:"date"`
	Client    string  `json:"client"`
	Contact   string  `json:"contact"`
	Brand     string  `json:"brand"`
	Model     string  `json:"model"`
	Problem   string  `json:"problem"`
	Fix       string  `json:"fix"`
	Amount    float64 `json:"amount"`
	UpdatedAt int64   `json:"updatedAt"`
	Deleted   bool    `json:"deleted,omitempty"`
}

func (v Visit) Key() int64      { return v.ID }
func (v Visit) Stamp() int64    { return v.UpdatedAt }
func (v Visit) Tombstone() bool { return v.Deleted }

// VisitTombstone returns the sentinel marking id as deleted at timestamp.
func VisitTombstone(id int64, timestamp int64) Visit {
	return Visit{ID: id, UpdatedAt: timestamp, Deleted: true}
}
