package objects_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/evented/pkg/evented/objects"
)

func TestClone_MapDeepCopy(t *testing.T) {
	original := map[string]any{
		"name": "feed",
		"tags": []string{"a", "b"},
		"nested": map[string]any{
			"count": 3,
		},
	}

	clone, ok := objects.Clone(original).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, original, clone)

	// Mutating the clone must not leak into the original.
	clone["name"] = "changed"
	clone["nested"].(map[string]any)["count"] = 99
	clone["tags"].([]string)[0] = "z"

	assert.Equal(t, "feed", original["name"])
	assert.Equal(t, 3, original["nested"].(map[string]any)["count"])
	assert.Equal(t, "a", original["tags"].([]string)[0])
}

func TestClone_SliceAndArray(t *testing.T) {
	s := []int{1, 2, 3}
	clone := objects.Clone(s).([]int)
	assert.Equal(t, s, clone)
	clone[0] = 42
	assert.Equal(t, 1, s[0])

	arr := [2]string{"x", "y"}
	assert.Equal(t, arr, objects.Clone(arr).([2]string))
}

func TestClone_Pointer(t *testing.T) {
	type box struct{ Value int }
	b := &box{Value: 7}

	clone := objects.Clone(b).(*box)
	require.NotSame(t, b, clone)
	assert.Equal(t, 7, clone.Value)

	clone.Value = 99
	assert.Equal(t, 7, b.Value)
}

func TestClone_StructWithNested(t *testing.T) {
	type inner struct{ Items []string }
	type outer struct {
		Name  string
		Inner *inner
	}

	o := outer{Name: "root", Inner: &inner{Items: []string{"one"}}}
	clone := objects.Clone(o).(outer)

	assert.Equal(t, o, clone)
	require.NotSame(t, o.Inner, clone.Inner)

	clone.Inner.Items[0] = "changed"
	assert.Equal(t, "one", o.Inner.Items[0])
}

func TestClone_TimeByValue(t *testing.T) {
	now := time.Now()
	clone := objects.Clone(now).(time.Time)
	assert.True(t, now.Equal(clone))
}

func TestClone_RegexpNotShared(t *testing.T) {
	re := regexp.MustCompile(`^ev-\d+$`)
	clone := objects.Clone(re).(*regexp.Regexp)

	require.NotSame(t, re, clone)
	assert.Equal(t, re.String(), clone.String())
	assert.True(t, clone.MatchString("ev-42"))
}

func TestClone_Nil(t *testing.T) {
	assert.Nil(t, objects.Clone(nil))
}

func TestExpose(t *testing.T) {
	src := map[string]any{"a": 1, "b": 2, "c": 3}

	t.Run("named keys", func(t *testing.T) {
		dst := map[string]any{"keep": true}
		objects.Expose(dst, src, "a", "c", "missing")
		assert.Equal(t, map[string]any{"keep": true, "a": 1, "c": 3}, dst)
	})

	t.Run("all keys when none given", func(t *testing.T) {
		dst := map[string]any{}
		objects.Expose(dst, src)
		assert.Equal(t, src, dst)
	})

	t.Run("nil maps are a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() {
			objects.Expose(nil, src, "a")
			objects.Expose(map[string]any{}, nil, "a")
		})
	})
}

func TestIsArray(t *testing.T) {
	assert.True(t, objects.IsArray([]int{1}))
	assert.True(t, objects.IsArray([0]string{}))
	assert.False(t, objects.IsArray("string"))
	assert.False(t, objects.IsArray(map[string]any{}))
	assert.False(t, objects.IsArray(nil))
}

func TestIsNone(t *testing.T) {
	var typedNil *int
	var nilIface any

	assert.True(t, objects.IsNone(nil))
	assert.True(t, objects.IsNone(typedNil))
	assert.True(t, objects.IsNone(nilIface))

	zero := 0
	assert.False(t, objects.IsNone(0))
	assert.False(t, objects.IsNone(""))
	assert.False(t, objects.IsNone(&zero))
	assert.False(t, objects.IsNone([]int{}))
	assert.False(t, objects.IsNone(map[string]any{}))
}
