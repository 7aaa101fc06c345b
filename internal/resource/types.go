// Package resource provides depletable resource nodes, the spatial resource
// index, and the village-wide fallback ledger.
package resource

// Type enumerates every resource kind that can exist in the economy.
type Type uint8

const (
	Wood Type = iota
	Stone
	IronOre
	IronIngot
	Tree
	FoodBerry
	FoodFish
	FoodWheat
	Water
	Clay
	Herb
	Potion
	Gold
	BasicTools
	AdvancedTools
	Weapons
)

// NumTypes is the total number of resource types.
const NumTypes = 16

// String returns the resource name.
func (t Type) String() string {
	switch t {
	case Wood:
		return "wood"
	case Stone:
		return "stone"
	case IronOre:
		return "iron_ore"
	case IronIngot:
		return "iron_ingot"
	case Tree:
		return "tree"
	case FoodBerry:
		return "food_berry"
	case FoodFish:
		return "food_fish"
	case FoodWheat:
		return "food_wheat"
	case Water:
		return "water"
	case Clay:
		return "clay"
	case Herb:
		return "herb"
	case Potion:
		return "potion"
	case Gold:
		return "gold"
	case BasicTools:
		return "basic_tools"
	case AdvancedTools:
		return "advanced_tools"
	case Weapons:
		return "weapons"
	default:
		return "unknown"
	}
}

// IsFood reports whether the type is edible.
func (t Type) IsFood() bool {
	return t == FoodBerry || t == FoodFish || t == FoodWheat
}

// IsRaw reports whether the type is an unprocessed material.
func (t Type) IsRaw() bool {
	switch t {
	case Wood, Stone, IronOre, Clay:
		return true
	default:
		return false
	}
}

// IsEquipment reports whether the type belongs in an armory.
func (t Type) IsEquipment() bool {
	switch t {
	case Weapons, BasicTools, AdvancedTools:
		return true
	default:
		return false
	}
}
