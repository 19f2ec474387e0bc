package models

// ItemType selects which registry a barcode rename applies to.
type ItemType string

const (
	ItemTypeTool       ItemType = "tool"
	ItemTypeConsumable ItemType = "consumable"
	ItemTypeWorker     ItemType = "worker"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeTool, ItemTypeConsumable, ItemTypeWorker:
		return true
	}
	return false
}
