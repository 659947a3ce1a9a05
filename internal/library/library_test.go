package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Syntax-error2/ELECDRAFT/internal/topology"
	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

func TestDefaultLibrary(t *testing.T) {
	lib := Default()
	require.NotEmpty(t, lib.Definitions)

	fixture := lib.Find("Lighting Fixture")
	require.NotNil(t, fixture)
	require.Equal(t, topology.CategoryLighting, fixture.Category)
	require.Equal(t, 100.0, fixture.DefaultVA)
	require.True(t, fixture.Continuous)

	panel := lib.Find("Panelboard")
	require.NotNil(t, panel)
	require.Equal(t, 100.0, panel.BusRating)
	require.Equal(t, 12, panel.Slots)

	// Sorted by name.
	for i := 1; i < len(lib.Definitions); i++ {
		require.Less(t, lib.Definitions[i-1].Name, lib.Definitions[i].Name)
	}
}

func TestAddReplaceRemove(t *testing.T) {
	lib := Default()
	n := len(lib.Definitions)

	lib.Add(&Definition{Name: "Lighting Fixture", Category: topology.CategoryLighting, DefaultVA: 60, Voltage: 230, Phase: 1})
	require.Len(t, lib.Definitions, n)
	require.Equal(t, 60.0, lib.Find("Lighting Fixture").DefaultVA)

	lib.Add(&Definition{Name: "Range Outlet", Category: topology.CategoryReceptacle, DefaultVA: 8000, Voltage: 230, Phase: 1})
	require.Len(t, lib.Definitions, n+1)

	lib.Remove("Range Outlet")
	require.Nil(t, lib.Find("Range Outlet"))
	require.Len(t, lib.Definitions, n)
}

func TestInstantiate(t *testing.T) {
	def := Default().Find("Duplex Outlet")
	c := def.Instantiate("R-12", geometry.Point2D{X: 40, Y: 60})

	require.NotEmpty(t, c.ID)
	require.Equal(t, "R-12", c.Name)
	require.Equal(t, topology.CategoryReceptacle, c.Category)
	require.Equal(t, 180.0, c.VA)
	require.Equal(t, 230.0, c.Voltage)
	require.Equal(t, 1, c.Phase)
	require.Equal(t, geometry.Point2D{X: 40, Y: 60}, c.Position)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	lib := Default()
	path := filepath.Join(t.TempDir(), "library.json")
	require.NoError(t, lib.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, lib.Definitions, loaded.Definitions)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
