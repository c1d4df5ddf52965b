package shared

import "fmt"

// EquipmentSlot names a worn-equipment position
type EquipmentSlot string

const (
	EquipmentSlotNone   EquipmentSlot = ""
	EquipmentSlotHead   EquipmentSlot = "HEAD"
	EquipmentSlotCape   EquipmentSlot = "CAPE"
	EquipmentSlotAmulet EquipmentSlot = "AMULET"
	EquipmentSlotWeapon EquipmentSlot = "WEAPON"
	EquipmentSlotBody   EquipmentSlot = "BODY"
	EquipmentSlotShield EquipmentSlot = "SHIELD"
	EquipmentSlotLegs   EquipmentSlot = "LEGS"
	EquipmentSlotGloves EquipmentSlot = "GLOVES"
	EquipmentSlotBoots  EquipmentSlot = "BOOTS"
	EquipmentSlotRing   EquipmentSlot = "RING"
	EquipmentSlotAmmo   EquipmentSlot = "AMMO"
)

var equipmentSlots = map[EquipmentSlot]bool{
	EquipmentSlotHead: true, EquipmentSlotCape: true, EquipmentSlotAmulet: true,
	EquipmentSlotWeapon: true, EquipmentSlotBody: true, EquipmentSlotShield: true,
	EquipmentSlotLegs: true, EquipmentSlotGloves: true, EquipmentSlotBoots: true,
	EquipmentSlotRing: true, EquipmentSlotAmmo: true,
}

// ParseEquipmentSlot converts a string into an EquipmentSlot; "" means none
func ParseEquipmentSlot(s string) (EquipmentSlot, error) {
	slot := EquipmentSlot(s)
	if slot == EquipmentSlotNone || equipmentSlots[slot] {
		return slot, nil
	}
	return "", NewValidationError("equipment_slot", fmt.Sprintf("unknown value %q", s))
}

// IsSet returns true for any real slot
func (s EquipmentSlot) IsSet() bool {
	return s != EquipmentSlotNone
}

// AnyInventorySlot is the sentinel for "put it wherever there is room"
const AnyInventorySlot = -1

// InventorySize is the number of inventory slots
const InventorySize = 28
