package jsonmatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubsetJSON(t *testing.T) {
	orderReq := map[string]any{
		"items": []any{
			map[string]any{"menuId": 1, "description": "Veggie", "price": 0.0038},
			map[string]any{"menuId": 2, "description": "Pepperoni", "price": 0.0042},
		},
		"storeId":     "4",
		"franchiseId": 2,
	}

	tests := []struct {
		name     string
		expected any
		body     string
		path     string
	}{
		{
			name:     "login body matches exactly",
			expected: map[string]any{"email": "d@jwt.com", "password": "a"},
			body:     `{"email":"d@jwt.com","password":"a"}`,
		},
		{
			name:     "extra keys are ignored",
			expected: map[string]any{"email": "d@jwt.com"},
			body:     `{"email":"d@jwt.com","password":"a"}`,
		},
		{
			name:     "order with nested items",
			expected: orderReq,
			body:     `{"items":[{"menuId":1,"description":"Veggie","price":0.0038,"extra":true},{"menuId":2,"description":"Pepperoni","price":0.0042}],"storeId":"4","franchiseId":2}`,
		},
		{
			name:     "store id type is strict",
			expected: orderReq,
			body:     `{"items":[{"menuId":1,"description":"Veggie","price":0.0038},{"menuId":2,"description":"Pepperoni","price":0.0042}],"storeId":4,"franchiseId":2}`,
			path:     "$.storeId",
		},
		{
			name:     "array length must match",
			expected: orderReq,
			body:     `{"items":[{"menuId":1,"description":"Veggie","price":0.0038}],"storeId":"4","franchiseId":2}`,
			path:     "$.items",
		},
		{
			name:     "nested value differs",
			expected: orderReq,
			body:     `{"items":[{"menuId":1,"description":"Veggie","price":0.0038},{"menuId":2,"description":"Pepperoni","price":0.005}],"storeId":"4","franchiseId":2}`,
			path:     "$.items[1].price",
		},
		{
			name:     "missing property",
			expected: map[string]any{"id": "", "name": "Store"},
			body:     `{"name":"Store"}`,
			path:     "$.id",
		},
		{
			name:     "empty body",
			expected: map[string]any{"email": "a@jwt.com"},
			body:     ``,
			path:     "$",
		},
		{
			name:     "not json",
			expected: map[string]any{"email": "a@jwt.com"},
			body:     `email=a@jwt.com`,
			path:     "$",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SubsetJSON(tt.expected, []byte(tt.body))
			if tt.path == "" {
				assert.NoError(t, err)
				return
			}
			var me *MismatchError
			require.True(t, errors.As(err, &me), "expected MismatchError, got %v", err)
			assert.Equal(t, tt.path, me.Path)
		})
	}
}

func TestSubsetNull(t *testing.T) {
	assert.NoError(t, Subset(map[string]any{"a": nil}, map[string]any{"a": nil}))
	assert.Error(t, Subset(map[string]any{"a": nil}, map[string]any{"a": "x"}))
	assert.Error(t, Subset(map[string]any{"a": "x"}, []any{"x"}))
}

func TestSubsetTypedGoValues(t *testing.T) {
	assert.NoError(t, Subset(map[string]any{"a": []string{"x"}}, map[string]any{"a": []string{"x"}}))
	assert.NoError(t, Subset([]int{1}, []int{1}))
	assert.NoError(t, Subset(map[string]any{"id": 4}, map[string]any{"id": float64(4), "name": "new"}))

	err := Subset([]int{1}, []int{2})
	var me *MismatchError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "$[0]", me.Path)

	assert.Error(t, Subset(map[string]any{"a": make(chan int)}, map[string]any{}))
}

func TestNormalize(t *testing.T) {
	in := map[string]any{
		"id":    4,
		"roles": []any{map[any]any{"role": "diner"}},
	}
	out, err := Normalize(in)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, float64(4), m["id"])
	roles := m["roles"].([]any)
	assert.Equal(t, map[string]any{"role": "diner"}, roles[0])

	_, err = Normalize(map[any]any{1: "x"})
	assert.Error(t, err)
}

func TestMismatchErrorMessage(t *testing.T) {
	err := Subset(map[string]any{"email": "a@jwt.com"}, map[string]any{"email": "d@jwt.com"})
	require.Error(t, err)
	assert.Equal(t, `$.email: expected "a@jwt.com", got "d@jwt.com"`, err.Error())
}
