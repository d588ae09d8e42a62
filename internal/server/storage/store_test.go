package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSharesTables(t *testing.T) {
	s := NewStore()
	a := s.Open("users")
	b := s.Open("users")
	require.Same(t, a, b)

	id, err := a.Insert(Record{"uname": "x@y.co"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, 1, b.Len())
}

func TestOpenRejectsEmptyName(t *testing.T) {
	s := NewStore()
	assert.Panics(t, func() { s.Open("") })
}

func TestInsertAssignsMonotonicIDs(t *testing.T) {
	tbl := newTable("t")

	id1, err := tbl.Insert(Record{"uname": "a"})
	require.NoError(t, err)
	id2, err := tbl.Insert(Record{"uname": "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	// removal must not free the id for reuse
	require.NoError(t, tbl.Remove(id2))
	id3, err := tbl.Insert(Record{"uname": "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id3)
}

func TestInsertRejectsBadRows(t *testing.T) {
	tbl := newTable("t")

	_, err := tbl.Insert(Record{})
	assert.ErrorIs(t, err, ErrInvalidRow)

	_, err = tbl.Insert(Record{"uname": []string{"nested"}})
	assert.ErrorIs(t, err, ErrInvalidRow)

	_, err = tbl.Insert(Record{"uname": nil})
	assert.ErrorIs(t, err, ErrInvalidRow)

	assert.Equal(t, 0, tbl.Len())
}

func TestInsertCopiesRow(t *testing.T) {
	tbl := newTable("t")
	row := Record{"uname": "a"}
	id, err := tbl.Insert(row)
	require.NoError(t, err)

	// caller's map must stay untouched and detached
	_, hasID := row["id"]
	assert.False(t, hasID)
	row["uname"] = "changed"

	got, err := tbl.Current(id, "id")
	require.NoError(t, err)
	assert.Equal(t, "a", got["uname"])
}

func TestUpdateMergesPatch(t *testing.T) {
	tbl := newTable("t")
	id, err := tbl.Insert(Record{"uname": "a", "auth": "", "phone": "+123456789"})
	require.NoError(t, err)

	require.NoError(t, tbl.Update(id, Record{"auth": "tok"}))

	got, err := tbl.Current(id, "id")
	require.NoError(t, err)
	assert.Equal(t, "tok", got["auth"])
	assert.Equal(t, "a", got["uname"], "untouched fields survive")
	assert.Equal(t, "+123456789", got["phone"])
}

func TestUpdateIgnoresIDField(t *testing.T) {
	tbl := newTable("t")
	id, err := tbl.Insert(Record{"uname": "a"})
	require.NoError(t, err)

	require.NoError(t, tbl.Update(id, Record{"id": int64(99), "uname": "b"}))

	got, err := tbl.Current(id, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got["id"])
	assert.Equal(t, "b", got["uname"])
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	tbl := newTable("t")
	id, err := tbl.Insert(Record{"uname": "a", "auth": ""})
	require.NoError(t, err)

	err = tbl.Update(id, Record{"auth": "tok", "bad": map[string]string{}})
	assert.ErrorIs(t, err, ErrInvalidRow)

	got, err := tbl.Current(id, "id")
	require.NoError(t, err)
	assert.Equal(t, "", got["auth"], "failed update must not apply any field")
}

func TestUpdateUnknownID(t *testing.T) {
	tbl := newTable("t")
	assert.ErrorIs(t, tbl.Update(7, Record{"uname": "x"}), ErrNoneOrDuplicate)
	assert.ErrorIs(t, tbl.Update(0, Record{"uname": "x"}), ErrNoneOrDuplicate)
}

func TestRemove(t *testing.T) {
	tbl := newTable("t")
	id1, _ := tbl.Insert(Record{"uname": "a"})
	id2, _ := tbl.Insert(Record{"uname": "b"})
	id3, _ := tbl.Insert(Record{"uname": "c"})

	require.NoError(t, tbl.Remove(id2))
	assert.ErrorIs(t, tbl.Remove(id2), ErrNoneOrDuplicate)

	// remaining rows still reachable by id after the splice
	for _, id := range []int64{id1, id3} {
		got, err := tbl.Current(id, "id")
		require.NoError(t, err)
		assert.Equal(t, id, got["id"])
	}
	assert.Equal(t, 2, tbl.Len())
}

func TestFindExactMatchesTypeAndValue(t *testing.T) {
	tbl := newTable("t")
	_, err := tbl.Insert(Record{"uname": "Alice", "age": 30})
	require.NoError(t, err)
	_, err = tbl.Insert(Record{"uname": "alice", "age": 31})
	require.NoError(t, err)

	rows, err := tbl.Find("alice", "uname", false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(31), rows[0]["age"])

	// int keys are widened before comparison
	rows, err = tbl.Find(30, "age", false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0]["uname"])
}

func TestFindInexactSubstring(t *testing.T) {
	tbl := newTable("t")
	tbl.Insert(Record{"email": "ann@example.com"})
	tbl.Insert(Record{"email": "bob@Example.org"})
	tbl.Insert(Record{"email": "carol@other.net"})

	rows, err := tbl.Find("EXAMPLE", "email", true)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// inexact is a no-op for non-string keys
	tbl.Insert(Record{"email": "x", "n": 42})
	rows, err = tbl.Find(42, "n", true)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFindRejectsBadKeys(t *testing.T) {
	tbl := newTable("t")
	_, err := tbl.Find("", "uname", false)
	assert.ErrorIs(t, err, ErrInvalidSearch)
	_, err = tbl.Find(map[string]int{}, "uname", false)
	assert.ErrorIs(t, err, ErrInvalidSearch)
	_, err = tbl.Find(nil, "uname", false)
	assert.ErrorIs(t, err, ErrInvalidSearch)
}

func TestFindReturnsCopies(t *testing.T) {
	tbl := newTable("t")
	id, _ := tbl.Insert(Record{"uname": "a"})

	rows, err := tbl.Find(id, "id", false)
	require.NoError(t, err)
	rows[0]["uname"] = "mutated"

	got, err := tbl.Current(id, "id")
	require.NoError(t, err)
	assert.Equal(t, "a", got["uname"])
}

func TestCurrent(t *testing.T) {
	tbl := newTable("t")
	tbl.Insert(Record{"uname": "a"})
	tbl.Insert(Record{"uname": "a"})
	tbl.Insert(Record{"uname": "b"})

	_, err := tbl.Current("a", "uname")
	assert.ErrorIs(t, err, ErrNoneOrDuplicate)

	_, err = tbl.Current("missing", "uname")
	assert.ErrorIs(t, err, ErrNoneOrDuplicate)

	got, err := tbl.Current("b", "uname")
	require.NoError(t, err)
	assert.Equal(t, "b", got["uname"])
}

func TestExists(t *testing.T) {
	tbl := newTable("t")
	tbl.Insert(Record{"uname": "a"})

	assert.True(t, tbl.Exists("a", ""))
	assert.False(t, tbl.Exists("b", ""))
}

func TestExistsFailsClosed(t *testing.T) {
	tbl := newTable("t")

	// malformed keys report true regardless of contents
	assert.True(t, tbl.Exists(map[string]int{}, "uname"))
	assert.True(t, tbl.Exists("", "uname"))
	assert.True(t, tbl.Exists(nil, "uname"))
}

func TestIndexedFindMatchesScan(t *testing.T) {
	indexed := newTable("a")
	indexed.Index("uname")
	plain := newTable("b")

	seed := []Record{
		{"uname": "a", "auth": "t1"},
		{"uname": "b", "auth": ""},
		{"uname": "a", "auth": "t2"},
	}
	for _, r := range seed {
		_, err := indexed.Insert(cloneRecord(r))
		require.NoError(t, err)
		_, err = plain.Insert(cloneRecord(r))
		require.NoError(t, err)
	}

	for _, key := range []string{"a", "b", "missing"} {
		want, err := plain.Find(key, "uname", false)
		require.NoError(t, err)
		got, err := indexed.Find(key, "uname", false)
		require.NoError(t, err)
		assert.Equal(t, want, got, "key %q", key)
	}
}

func TestIndexTracksUpdateAndRemove(t *testing.T) {
	tbl := newTable("t")
	tbl.Index("auth")

	id, err := tbl.Insert(Record{"uname": "a", "auth": "old"})
	require.NoError(t, err)

	require.NoError(t, tbl.Update(id, Record{"auth": "new"}))
	rows, err := tbl.Find("old", "auth", false)
	require.NoError(t, err)
	assert.Empty(t, rows)
	rows, err = tbl.Find("new", "auth", false)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, tbl.Remove(id))
	rows, err = tbl.Find("new", "auth", false)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestIndexBuiltOverExistingRows(t *testing.T) {
	tbl := newTable("t")
	tbl.Insert(Record{"secret": "s1"})
	tbl.Insert(Record{"secret": "s2"})

	tbl.Index("secret")

	rows, err := tbl.Find("s2", "secret", false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0]["id"])
}

func TestAtomicSerializes(t *testing.T) {
	s := NewStore()
	tbl := s.Open("pending")

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Atomic(func() error {
			_, err := tbl.Insert(Record{"uname": "a"})
			return err
		})
	}()
	<-done

	err := s.Atomic(func() error {
		if tbl.Exists("a", "uname") {
			return nil
		}
		t.Error("row inserted in earlier region not visible")
		return nil
	})
	require.NoError(t, err)
}
