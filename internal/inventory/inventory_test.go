package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
)

func TestAddAssignsNextID(t *testing.T) {
	inv := New(nil)
	first := inv.Add()
	assert.Equal(t, domain.AssetRecord{ID: 1, Name: "New Asset", Type: domain.AssetServer, Importance: 3}, first)

	inv = New([]domain.AssetRecord{{ID: 7, Name: "a", Type: domain.AssetNetwork}, {ID: 2, Name: "b", Type: domain.AssetNetwork}})
	assert.Equal(t, 8, inv.Add().ID)
}

func TestDeleteThenAddUsesCurrentMax(t *testing.T) {
	t.Run("middle id stays free", func(t *testing.T) {
		inv := New(domain.DefaultInventory())
		require.NoError(t, inv.Delete(2))
		assert.Equal(t, 4, inv.Add().ID)

		err := inv.Delete(2)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleted max id is reused", func(t *testing.T) {
		// ID = max+1 по текущему списку, поэтому удаленный максимум выдается снова
		inv := New(domain.DefaultInventory())
		require.NoError(t, inv.Delete(3))
		assert.Equal(t, 3, inv.Add().ID)
	})
}

func TestUpdate(t *testing.T) {
	inv := New(domain.DefaultInventory())
	name := "Edge Router"
	typ := domain.AssetNetwork
	imp := 2

	got, err := inv.Update(3, Patch{Name: &name, Type: &typ, Importance: &imp})
	require.NoError(t, err)
	assert.Equal(t, domain.AssetRecord{ID: 3, Name: name, Type: typ, Importance: 2}, got)
	assert.Equal(t, got, inv.List()[2])

	bad := 9
	_, err = inv.Update(3, Patch{Importance: &bad})
	require.Error(t, err)
	assert.Equal(t, 2, inv.List()[2].Importance, "invalid patch leaves the record untouched")

	_, err = inv.Update(99, Patch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateValidates(t *testing.T) {
	inv := New(nil)
	_, err := inv.Create(domain.AssetRecord{Name: "", Type: domain.AssetServer})
	assert.Error(t, err)

	got, err := inv.Create(domain.AssetRecord{ID: 42, Name: "HR Database", Type: domain.AssetDatabase, Importance: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)
}

func TestSummary(t *testing.T) {
	inv := New(domain.DefaultInventory())
	inv.Add()
	assert.Equal(t, Summary{Total: 4, HighImportance: 3}, inv.Summary())
}

func TestListIsACopy(t *testing.T) {
	inv := New(domain.DefaultInventory())
	list := inv.List()
	list[0].Name = "changed"
	assert.Equal(t, "Primary Web Server", inv.List()[0].Name)
}
