package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTable_DefineAssignsIndexesInDeclarationOrder(t *testing.T) {
	table := NewSymbolTable()
	testData := []struct {
		name          string
		typ           string
		kind          Kind
		expectedIndex int
	}{
		{name: "a", typ: "int", kind: FieldKind, expectedIndex: 0},
		{name: "count", typ: "int", kind: StaticKind, expectedIndex: 0},
		{name: "b", typ: "Square", kind: FieldKind, expectedIndex: 1},
		{name: "c", typ: "boolean", kind: FieldKind, expectedIndex: 2},
		{name: "total", typ: "char", kind: StaticKind, expectedIndex: 1},
		{name: "dx", typ: "int", kind: ArgKind, expectedIndex: 0},
		{name: "i", typ: "int", kind: VarKind, expectedIndex: 0},
		{name: "dy", typ: "int", kind: ArgKind, expectedIndex: 1},
		{name: "j", typ: "Array", kind: VarKind, expectedIndex: 1},
	}
	for _, data := range testData {
		entry, err := table.Define(data.name, data.typ, data.kind)
		require.NoError(t, err, data.name)
		assert.Equal(t, data.expectedIndex, entry.Index, data.name)

		kind, ok := table.KindOf(data.name)
		assert.True(t, ok)
		assert.Equal(t, data.kind, kind)
		typ, _ := table.TypeOf(data.name)
		assert.Equal(t, data.typ, typ)
		index, _ := table.IndexOf(data.name)
		assert.Equal(t, data.expectedIndex, index)
	}
	assert.Equal(t, 3, table.VarCount(FieldKind))
	assert.Equal(t, 2, table.VarCount(StaticKind))
	assert.Equal(t, 2, table.VarCount(ArgKind))
	assert.Equal(t, 2, table.VarCount(VarKind))
}

func TestSymbolTable_StartSubroutine(t *testing.T) {
	table := NewSymbolTable()
	_, err := table.Define("x", "int", FieldKind)
	require.NoError(t, err)
	_, err = table.Define("shared", "int", StaticKind)
	require.NoError(t, err)
	_, err = table.Define("a", "int", ArgKind)
	require.NoError(t, err)
	_, err = table.Define("v", "int", VarKind)
	require.NoError(t, err)

	table.StartSubroutine()

	_, ok := table.Lookup("a")
	assert.False(t, ok)
	_, ok = table.Lookup("v")
	assert.False(t, ok)
	assert.Equal(t, 0, table.VarCount(ArgKind))
	assert.Equal(t, 0, table.VarCount(VarKind))

	// Class scope survives.
	entry, ok := table.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, Entry{Name: "x", Type: "int", Kind: FieldKind, Index: 0}, entry)
	assert.Equal(t, 1, table.VarCount(FieldKind))
	assert.Equal(t, 1, table.VarCount(StaticKind))

	// Numbering restarts and names may be reused.
	entry, err = table.Define("v", "char", ArgKind)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Index)
}

func TestSymbolTable_SubroutineScopeShadowsClassScope(t *testing.T) {
	table := NewSymbolTable()
	_, err := table.Define("size", "int", FieldKind)
	require.NoError(t, err)
	_, err = table.Define("size", "Array", VarKind)
	require.NoError(t, err)

	entry, ok := table.Lookup("size")
	assert.True(t, ok)
	assert.Equal(t, VarKind, entry.Kind)
	assert.Equal(t, "Array", entry.Type)

	table.StartSubroutine()
	entry, _ = table.Lookup("size")
	assert.Equal(t, FieldKind, entry.Kind)
}

func TestSymbolTable_Redeclaration(t *testing.T) {
	testData := []struct {
		first, second Kind
		expectErr     bool
	}{
		{first: FieldKind, second: FieldKind, expectErr: true},
		{first: FieldKind, second: StaticKind, expectErr: true},
		{first: ArgKind, second: VarKind, expectErr: true},
		{first: VarKind, second: VarKind, expectErr: true},
		{first: StaticKind, second: VarKind, expectErr: false},
		{first: FieldKind, second: ArgKind, expectErr: false},
	}
	for _, data := range testData {
		table := NewSymbolTable()
		_, err := table.Define("a", "int", data.first)
		require.NoError(t, err)
		_, err = table.Define("a", "int", data.second)
		if !data.expectErr {
			assert.NoError(t, err, data)
			continue
		}
		var redeclaration *RedeclarationError
		require.True(t, errors.As(err, &redeclaration), data)
		assert.Equal(t, "a", redeclaration.Name)
		assert.Equal(t, data.first, redeclaration.Prev.Kind)
		// A failed define does not consume an index.
		assert.Equal(t, 1, table.VarCount(data.first))
		if data.first != data.second {
			assert.Equal(t, 0, table.VarCount(data.second))
		}
	}
}

func TestSymbolTable_LookupMissing(t *testing.T) {
	table := NewSymbolTable()
	_, ok := table.Lookup("nothing")
	assert.False(t, ok)
	_, ok = table.KindOf("nothing")
	assert.False(t, ok)
	_, ok = table.TypeOf("nothing")
	assert.False(t, ok)
	_, ok = table.IndexOf("nothing")
	assert.False(t, ok)
}

func TestKind_Segment(t *testing.T) {
	assert.Equal(t, StaticSegment, StaticKind.Segment())
	assert.Equal(t, ThisSegment, FieldKind.Segment())
	assert.Equal(t, ArgumentSegment, ArgKind.Segment())
	assert.Equal(t, LocalSegment, VarKind.Segment())
}
