package models

// Brand groups the device models seen for one manufacturer. Identifiers are
// client-generated UUID strings, so offline creates never collide with the
// server's id space.
type Brand struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Models    []string `json:"models"`
	UpdatedAt int64    `json:"updatedAt"`
	Deleted   bool     `json:"deleted,omitempty"`
}

func (b Brand) Key() string     { return b.ID }
func (b Brand) Stamp() int64    { return b.UpdatedAt }
func (b Brand) Tombstone() bool { return b.Deleted }

// BrandTombstone returns the sentinel marking id as deleted at timestamp.
func BrandTombstone(id string, timestamp int64) Brand {
	return Brand{ID: id, UpdatedAt: timestamp, Deleted: true}
}

// HasModel reports whether name is already registered for the brand.
func (b Brand) HasModel(name string) bool {
	for _, m := range b.Models {
		if m == name {
			return true
		}
	}
	return false
}
