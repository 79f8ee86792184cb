package gojinja2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetMetadataEmptyWhenNoMetaBlock(t *testing.T) {
	tpl, err := FromString("just text")
	require.NoError(t, err)
	meta, err := tpl.GetMetadata()
	require.NoError(t, err)
	require.Empty(t, meta)
}

func TestGetMetadataNestedValues(t *testing.T) {
	tpl, err := FromString(`{% meta %}{"owner": "team-a", "tags": ["a", "b"], "limits": {"max": 3}}{% endmeta %}`)
	require.NoError(t, err)
	meta, err := tpl.GetMetadata()
	require.NoError(t, err)
	require.Equal(t, "team-a", meta["owner"])
	tags, ok := meta["tags"].([]interface{})
	require.True(t, ok)
	require.Equal(t, []interface{}{"a", "b"}, tags)
	limits, ok := meta["limits"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, float64(3), limits["max"])
}

func TestMetaBlockNonObjectPayloadFailsToCompile(t *testing.T) {
	_, err := FromString(`{% meta %}["not", "an", "object"]{% endmeta %}`)
	require.Error(t, err)
}
