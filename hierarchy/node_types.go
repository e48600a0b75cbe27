package hierarchy

// NodeType is the closed set of hierarchy node kinds. Semantic types
// mirror plant containment levels; bucket types are non-semantic
// grouping nodes that keep same-typed children together.
type NodeType string

const (
	TypeRoot         NodeType = "root"
	TypePlant        NodeType = "plant_node"
	TypeUnit         NodeType = "unit_node"
	TypeArea         NodeType = "area_node"
	TypeEquipment    NodeType = "equipment_node"
	TypeSubEquipment NodeType = "sub_equipment_node"
	TypeAsset        NodeType = "asset_node"

	TypeEquipmentBucket    NodeType = "equipment_bucket"
	TypeSubEquipmentBucket NodeType = "sub_equipment_bucket"
	TypeAssetBucket        NodeType = "asset_bucket"
	TypeAreaBucket         NodeType = "area_bucket"

	// TypeInfo marks a transient annotation carrying on-demand detail
	// text. Attached via AttachInfo, never serialized.
	TypeInfo NodeType = "info_node"
)

// allowedChildren is the static adjacency table. A type absent from a
// parent's set may never be inserted under it; an empty set means the
// type is a leaf.
var allowedChildren = map[NodeType]map[NodeType]bool{
	TypeRoot: {
		TypePlant: true,
	},
	TypePlant: {
		TypeUnit: true,
		TypeArea: true,
	},
	TypeUnit: {
		TypeArea:            true,
		TypeEquipment:       true,
		TypeAsset:           true,
		TypeAreaBucket:      true,
		TypeEquipmentBucket: true,
		TypeAssetBucket:     true,
	},
	TypeArea: {
		TypeEquipment:       true,
		TypeAsset:           true,
		TypeEquipmentBucket: true,
		TypeAssetBucket:     true,
	},
	TypeEquipment: {
		TypeSubEquipment:       true,
		TypeAsset:              true,
		TypeSubEquipmentBucket: true,
		TypeAssetBucket:        true,
	},
	TypeSubEquipment: {
		TypeAsset:       true,
		TypeAssetBucket: true,
	},
	TypeAsset: {},

	// Buckets hold exactly their element type.
	TypeEquipmentBucket:    {TypeEquipment: true},
	TypeSubEquipmentBucket: {TypeSubEquipment: true},
	TypeAssetBucket:        {TypeAsset: true},
	TypeAreaBucket:         {TypeArea: true},
}

// bucketLabels are the display texts buckets are created with.
var bucketLabels = map[NodeType]string{
	TypeEquipmentBucket:    "Equipment",
	TypeSubEquipmentBucket: "Sub-Equipment",
	TypeAssetBucket:        "Assets",
	TypeAreaBucket:         "Areas",
}

// IsBucket reports whether t is a grouping bucket.
func IsBucket(t NodeType) bool {
	_, ok := bucketLabels[t]
	return ok
}

// Valid reports whether t is a known node type.
func Valid(t NodeType) bool {
	if t == TypeInfo {
		return true
	}
	_, ok := allowedChildren[t]
	return ok
}

// CanContain reports whether child may be inserted under parent.
func CanContain(parent, child NodeType) bool {
	return allowedChildren[parent][child]
}

// defaultOpen is the initial expanded state for a freshly created
// node. Assets start collapsed, everything else expanded.
func defaultOpen(t NodeType) bool {
	switch t {
	case TypeAsset, TypeInfo:
		return false
	}
	return true
}
