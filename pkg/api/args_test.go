package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/floeworks/floe/pkg/api"
)

func TestArgsSet(t *testing.T) {
	var args api.Args
	res := args.Set("key", "value")
	assert.Equal(t, "value", res["key"])
	assert.Nil(t, args)

	orig := api.Args{"a": 1}
	res = orig.Set("b", 2)
	assert.Len(t, orig, 1)
	assert.Len(t, res, 2)
}

func TestArgsMerge(t *testing.T) {
	base := api.Args{"a": 1, "b": 2}
	res := base.Merge(api.Args{"b": 3, "c": 4})

	assert.Equal(t, 3, res["b"])
	assert.Equal(t, 4, res["c"])
	assert.Equal(t, 2, base["b"])

	assert.Equal(t, base, base.Merge(nil))
}

func TestArgsGetString(t *testing.T) {
	args := api.Args{"name": "deploy", "count": 3}
	assert.Equal(t, "deploy", args.GetString("name", "fallback"))
	assert.Equal(t, "fallback", args.GetString("missing", "fallback"))
	assert.Equal(t, "fallback", args.GetString("count", "fallback"))
}

func TestArgsGetInt(t *testing.T) {
	args := api.Args{"retries": 3, "parsed": float64(5), "name": "x"}
	assert.Equal(t, 3, args.GetInt("retries", 0))
	assert.Equal(t, 5, args.GetInt("parsed", 0))
	assert.Equal(t, 7, args.GetInt("missing", 7))
	assert.Equal(t, 7, args.GetInt("name", 7))
}

func TestArgsGetArgs(t *testing.T) {
	args := api.Args{
		"nested": map[string]any{"a": 1},
		"typed":  api.Args{"b": 2},
		"scalar": "x",
	}
	assert.Equal(t, api.Args{"a": 1}, args.GetArgs("nested"))
	assert.Equal(t, api.Args{"b": 2}, args.GetArgs("typed"))
	assert.Nil(t, args.GetArgs("scalar"))
	assert.Nil(t, args.GetArgs("missing"))
}

func TestArgsClone(t *testing.T) {
	var empty api.Args
	assert.NotNil(t, empty.Clone())

	orig := api.Args{"a": 1}
	clone := orig.Clone()
	clone["a"] = 2
	assert.Equal(t, 1, orig["a"])
}
