package workbench

// Inventory is the order-stable collection of scan records materialized by
// the paginated lister. Records are keyed by the server's opaque listing
// key; the key order is the pagination order and holds stable for the life
// of one run, which is what position-based sampling depends on.
type Inventory struct {
	keys  []string
	byKey map[string]ScanRecord
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		byKey: make(map[string]ScanRecord),
	}
}

// Add appends a record under key, preserving insertion order. If the key is
// already present the first occurrence is kept and Add returns false.
func (inv *Inventory) Add(key string, rec ScanRecord) bool {
	if _, exists := inv.byKey[key]; exists {
		return false
	}
	inv.keys = append(inv.keys, key)
	inv.byKey[key] = rec
	return true
}

// Len returns the number of records.
func (inv *Inventory) Len() int {
	return len(inv.keys)
}

// At returns the record at position i in listing order.
func (inv *Inventory) At(i int) ScanRecord {
	return inv.byKey[inv.keys[i]]
}

// Entry returns the listing key and record at position i.
func (inv *Inventory) Entry(i int) (string, ScanRecord) {
	key := inv.keys[i]
	return key, inv.byKey[key]
}

// Get returns the record stored under key.
func (inv *Inventory) Get(key string) (ScanRecord, bool) {
	rec, ok := inv.byKey[key]
	return rec, ok
}
