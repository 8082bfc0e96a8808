package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"kvtree/row"
)

func TestParseInsert(t *testing.T) {
	s, err := Parse("insert 1 alice alice@example.com")
	require.NoError(t, err)
	require.Equal(t, KindInsert, s.Kind)
	require.Equal(t, uint32(1), s.InsertID)
	require.Equal(t, "alice", s.InsertUsername)
	require.Equal(t, "alice@example.com", s.InsertEmail)
}

func TestParseSelect(t *testing.T) {
	s, err := Parse("select")
	require.NoError(t, err)
	require.Equal(t, KindSelect, s.Kind)
}

func TestParseDelete(t *testing.T) {
	s, err := Parse("delete 7")
	require.NoError(t, err)
	require.Equal(t, KindDelete, s.Kind)
	require.Equal(t, uint32(7), s.DeleteID)
}

func TestParseMetaCommands(t *testing.T) {
	for _, name := range []string{".exit", ".btree", ".constants"} {
		s, err := Parse(name)
		require.NoError(t, err)
		require.Equal(t, KindMeta, s.Kind)
		require.Equal(t, name, s.MetaCommand)
	}
}

func TestParseUnrecognizedMetaCommand(t *testing.T) {
	_, err := Parse(".frobnicate")
	require.ErrorIs(t, err, ErrUnrecognizedCommand)
}

func TestParseUnrecognizedKeyword(t *testing.T) {
	_, err := Parse("frobnicate 1 2 3")
	require.ErrorIs(t, err, ErrUnrecognizedKeyword)
}

func TestParseInsertWrongArgCount(t *testing.T) {
	_, err := Parse("insert 1 alice")
	require.ErrorIs(t, err, ErrSyntax)
}

func TestParseInsertNonPositiveID(t *testing.T) {
	_, err := Parse("insert -1 alice alice@example.com")
	require.ErrorIs(t, err, ErrInvalidID)

	_, err = Parse("insert 0 alice alice@example.com")
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestParseInsertNonNumericID(t *testing.T) {
	_, err := Parse("insert abc alice alice@example.com")
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestParseInsertStringTooLong(t *testing.T) {
	longName := strings.Repeat("a", row.UsernameColumnSize+1)
	_, err := Parse("insert 1 " + longName + " alice@example.com")
	require.ErrorIs(t, err, row.ErrStringTooLong)
}

func TestParseDeleteNonPositiveID(t *testing.T) {
	_, err := Parse("delete -5")
	require.ErrorIs(t, err, ErrInvalidID)
}
