package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/devrights/internal/models"
)

func TestBuildIndex_LastRowWins(t *testing.T) {
	first := parcel("123-456-78", models.TownCenterOutside)
	second := parcel("123-456-78", models.TownCenterWithin)

	idx := BuildIndex([]models.Parcel{first, second, parcel(" ", models.TownCenterWithin)})

	require.Len(t, idx, 1)
	p, ok := idx.Lookup("123-456-78")
	require.True(t, ok)
	assert.Equal(t, models.TownCenterWithin, p.LocationToTownCenter)
}

func TestBuildIndex_Empty(t *testing.T) {
	idx := BuildIndex(nil)
	assert.NotNil(t, idx)
	assert.Empty(t, idx)

	_, ok := idx.Lookup("123-456-78")
	assert.False(t, ok)
}

func TestParcelIndex_LookupReturnsCopy(t *testing.T) {
	idx := BuildIndex([]models.Parcel{parcel("123-456-78", models.TownCenterOutside)})

	p, ok := idx.Lookup(" 123-456-78 ")
	require.True(t, ok)
	p.LocationToTownCenter = models.TownCenterWithin

	again, _ := idx.Lookup("123-456-78")
	assert.Equal(t, models.TownCenterOutside, again.LocationToTownCenter)
}
