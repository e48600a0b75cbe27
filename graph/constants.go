package graph

const (
	// Link weight constants
	defaultLinkWeight   = 1.0 // Initial weight for new links
	linkWeightIncrement = 0.5 // Weight increase for duplicate relationships

	// Node type names used in rendered graphs
	typeEquipment    = "equipment"
	typeSubEquipment = "sub_equipment"
	typeAsset        = "asset"
	typeValue        = "value"   // blank nodes carrying hasValue/hasUnit pairs
	typeUntyped      = "untyped" // resources outside the categorized lists
)

// Display palette per node type. Untyped nodes render transparent
// gray so categorized equipment stands out.
var typeColors = map[string]string{
	typeEquipment:    "#e74c3c",
	typeSubEquipment: "#e67e22",
	typeAsset:        "#3498db",
	typeValue:        "#95a5a6",
	typeUntyped:      "rgba(149, 165, 166, 0.3)",
}

var typeLabels = map[string]string{
	typeEquipment:    "Equipment",
	typeSubEquipment: "Sub-Equipment",
	typeAsset:        "Asset",
	typeValue:        "Value",
	typeUntyped:      "Untyped",
}
