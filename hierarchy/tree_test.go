package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantworks/leantwin/errors"
)

func buildPlant(t *testing.T) (*Tree, *Node) {
	t.Helper()
	tree := NewTree()
	plant, err := tree.InsertChild(tree.Root().ID, "Refinery", TypePlant)
	require.NoError(t, err)
	return tree, plant
}

func TestInsertChildAllowed(t *testing.T) {
	tree, plant := buildPlant(t)

	unit, err := tree.InsertChild(plant.ID, "Unit 100", TypeUnit)
	require.NoError(t, err)
	assert.True(t, unit.Open)

	area, err := tree.InsertChild(unit.ID, "Area A", TypeArea)
	require.NoError(t, err)

	eq, err := tree.InsertChild(area.ID, "Pump-101", TypeEquipment)
	require.NoError(t, err)

	sub, err := tree.InsertChild(eq.ID, "Impeller", TypeSubEquipment)
	require.NoError(t, err)

	asset, err := tree.InsertChild(sub.ID, "Bearing-1", TypeAsset)
	require.NoError(t, err)
	assert.False(t, asset.Open, "assets start collapsed")
}

func TestInsertChildDisallowedPairs(t *testing.T) {
	semantic := []NodeType{
		TypePlant, TypeUnit, TypeArea, TypeEquipment, TypeSubEquipment, TypeAsset,
	}

	// Each entry lists the semantic child types a parent accepts;
	// everything outside the list must be rejected.
	allowed := map[NodeType][]NodeType{
		TypeRoot:         {TypePlant},
		TypePlant:        {TypeUnit, TypeArea},
		TypeUnit:         {TypeArea, TypeEquipment, TypeAsset},
		TypeArea:         {TypeEquipment, TypeAsset},
		TypeEquipment:    {TypeSubEquipment, TypeAsset},
		TypeSubEquipment: {TypeAsset},
		TypeAsset:        {},
	}

	makeNodeOfType := func(t *testing.T, tree *Tree, typ NodeType) *Node {
		t.Helper()
		if typ == TypeRoot {
			return tree.Root()
		}
		plant, err := tree.InsertChild(tree.Root().ID, "P", TypePlant)
		require.NoError(t, err)
		if typ == TypePlant {
			return plant
		}
		unit, err := tree.InsertChild(plant.ID, "U", TypeUnit)
		require.NoError(t, err)
		switch typ {
		case TypeUnit:
			return unit
		case TypeArea:
			n, err := tree.InsertChild(unit.ID, "A", TypeArea)
			require.NoError(t, err)
			return n
		}
		eq, err := tree.InsertChild(unit.ID, "E", TypeEquipment)
		require.NoError(t, err)
		switch typ {
		case TypeEquipment:
			return eq
		case TypeSubEquipment:
			n, err := tree.InsertChild(eq.ID, "S", TypeSubEquipment)
			require.NoError(t, err)
			return n
		case TypeAsset:
			n, err := tree.InsertChild(eq.ID, "X", TypeAsset)
			require.NoError(t, err)
			return n
		}
		t.Fatalf("unhandled type %s", typ)
		return nil
	}

	for parentType, kids := range allowed {
		ok := make(map[NodeType]bool)
		for _, k := range kids {
			ok[k] = true
		}
		for _, childType := range semantic {
			if ok[childType] {
				continue
			}
			tree := NewTree()
			parent := makeNodeOfType(t, tree, parentType)
			_, err := tree.InsertChild(parent.ID, "bad", childType)
			assert.True(t, errors.Is(err, errors.ErrTypeNotAllowed),
				"%s under %s must be rejected", childType, parentType)
		}
	}
}

func TestInsertChildUnknownParent(t *testing.T) {
	tree := NewTree()
	_, err := tree.InsertChild("no-such-id", "x", TypePlant)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestEnsureBucketIdempotent(t *testing.T) {
	tree, plant := buildPlant(t)
	unit, err := tree.InsertChild(plant.ID, "Unit 100", TypeUnit)
	require.NoError(t, err)

	b1, err := tree.EnsureBucket(unit.ID, TypeEquipmentBucket)
	require.NoError(t, err)
	assert.Equal(t, "Equipment", b1.Text)

	b2, err := tree.EnsureBucket(unit.ID, TypeEquipmentBucket)
	require.NoError(t, err)
	assert.Equal(t, b1.ID, b2.ID, "same bucket both times")

	// A second bucket type under the same owner is a distinct node.
	b3, err := tree.EnsureBucket(unit.ID, TypeAssetBucket)
	require.NoError(t, err)
	assert.NotEqual(t, b1.ID, b3.ID)

	_, err = tree.EnsureBucket(unit.ID, TypeUnit)
	assert.Error(t, err, "non-bucket type rejected")
}

func TestBucketHoldsOnlyElementType(t *testing.T) {
	tree, plant := buildPlant(t)
	unit, err := tree.InsertChild(plant.ID, "Unit 100", TypeUnit)
	require.NoError(t, err)
	bucket, err := tree.EnsureBucket(unit.ID, TypeEquipmentBucket)
	require.NoError(t, err)

	_, err = tree.InsertChild(bucket.ID, "Pump-101", TypeEquipment)
	assert.NoError(t, err)

	_, err = tree.InsertChild(bucket.ID, "Bearing-1", TypeAsset)
	assert.True(t, errors.Is(err, errors.ErrTypeNotAllowed))
}

func TestRemoveSubtree(t *testing.T) {
	tree, plant := buildPlant(t)
	unit, err := tree.InsertChild(plant.ID, "Unit 100", TypeUnit)
	require.NoError(t, err)
	eq, err := tree.InsertChild(unit.ID, "Pump-101", TypeEquipment)
	require.NoError(t, err)

	before := tree.Size()
	require.NoError(t, tree.Remove(unit.ID))

	_, ok := tree.Find(unit.ID)
	assert.False(t, ok)
	_, ok = tree.Find(eq.ID)
	assert.False(t, ok, "descendants removed with the subtree")
	assert.Equal(t, before-2, tree.Size())
	assert.Empty(t, plant.Children())

	assert.Error(t, tree.Remove(tree.Root().ID))
}

func TestSerializeRoundTrip(t *testing.T) {
	tree, plant := buildPlant(t)
	unit, err := tree.InsertChild(plant.ID, "Unit 100", TypeUnit)
	require.NoError(t, err)
	bucket, err := tree.EnsureBucket(unit.ID, TypeEquipmentBucket)
	require.NoError(t, err)
	eq, err := tree.InsertChild(bucket.ID, "Pump-101", TypeEquipment)
	require.NoError(t, err)
	require.NoError(t, tree.SetOpen(eq.ID, false))

	doc := tree.Serialize()
	restored, err := Deserialize(doc)
	require.NoError(t, err)

	assert.Equal(t, doc, restored.Serialize())
	assert.Equal(t, tree.Size(), restored.Size())
}

func TestSerializeExcludesInfoAnnotations(t *testing.T) {
	tree, plant := buildPlant(t)
	_, err := tree.AttachInfo(plant.ID, "3 properties, 2 datasheets")
	require.NoError(t, err)

	doc := tree.Serialize()
	require.Len(t, doc.Children, 1)
	assert.Empty(t, doc.Children[0].Children, "annotation not serialized")
}

func TestDeserializeRejectsBadDocuments(t *testing.T) {
	_, err := Deserialize(Document{Text: "x", Type: TypePlant})
	assert.Error(t, err, "non-root root type")

	_, err = Deserialize(Document{
		Text: RootLabel, Type: TypeRoot,
		Children: []Document{{Text: "Bearing", Type: TypeAsset}},
	})
	assert.Error(t, err, "asset directly under root")
}

func TestRename(t *testing.T) {
	tree, plant := buildPlant(t)
	require.NoError(t, tree.Rename(plant.ID, "Refinery North"))
	n, _ := tree.Find(plant.ID)
	assert.Equal(t, "Refinery North", n.Text)

	assert.Error(t, tree.Rename(tree.Root().ID, "x"))
}
