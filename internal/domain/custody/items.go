package custody

import "time"

// ItemStatus tracks an item's availability and assignment.
type ItemStatus string

const (
	ItemAvailable   ItemStatus = "available"
	ItemAssigned    ItemStatus = "assigned"
	ItemCheckedOut  ItemStatus = "checked_out"
	ItemLost        ItemStatus = "lost"
	ItemMaintenance ItemStatus = "maintenance"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemAvailable, ItemAssigned, ItemCheckedOut, ItemLost, ItemMaintenance:
		return true
	}
	return false
}

// ItemType categorizes inventory items.
type ItemType string

const (
	ItemTypeFirearm   ItemType = "firearm"
	ItemTypeOptic     ItemType = "optic"
	ItemTypeCase      ItemType = "case"
	ItemTypeMagazine  ItemType = "magazine"
	ItemTypeTool      ItemType = "tool"
	ItemTypeAccessory ItemType = "accessory"
	ItemTypeOther     ItemType = "other"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeFirearm, ItemTypeOptic, ItemTypeCase, ItemTypeMagazine,
		ItemTypeTool, ItemTypeAccessory, ItemTypeOther:
		return true
	}
	return false
}

// Item is one physical inventory component. Items exist independently of
// kits: an unassigned item sits in the master inventory and can be moved
// between kits over its lifetime. KitID is nil while unassigned.
type Item struct {
	ID           string
	KitID        *string
	Type         ItemType
	Make         string
	Model        string
	SerialNumber string
	FriendlyName string
	PhotoURL     string
	Quantity     int
	Status       ItemStatus
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
