package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAncestry_Empty(t *testing.T) {
	var a Ancestry

	assert.True(t, a.IsEmpty())
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, "", a.Path())
	assert.Empty(t, a.Segments())
	assert.Equal(t, "/", a.String())
}

func TestAncestry_PushDoesNotMutate(t *testing.T) {
	base := Ancestry{}.Push("configuration")
	country := base.Push("country")
	other := base.Push("statistics")

	assert.Equal(t, []string{"configuration"}, base.Segments())
	assert.Equal(t, []string{"configuration", "country"}, country.Segments())
	assert.Equal(t, []string{"configuration", "statistics"}, other.Segments())
	assert.Equal(t, "configuration/country", country.Path())
	assert.Equal(t, 2, country.Len())
}

func TestAncestry_SharedPrefixIsStable(t *testing.T) {
	root := Ancestry{}.Push("version").Push("v1")

	var leaves []Ancestry
	for _, key := range []string{"DE", "FR", "IT"} {
		leaves = append(leaves, root.Push(key))
	}

	assert.Equal(t, "version/v1/DE", leaves[0].Path())
	assert.Equal(t, "version/v1/FR", leaves[1].Path())
	assert.Equal(t, "version/v1/IT", leaves[2].Path())
	assert.Equal(t, "version/v1", root.Path())
}
