package adjacency

import (
	"testing"

	"github.com/boutros/hdt/internal/bitutil"
	"github.com/boutros/hdt/internal/intstream"
)

// buildList constructs a List from groups, a slice of sorted-within-group
// element slices.
func buildList(t *testing.T, groups [][]uint64) *List {
	t.Helper()
	b := intstream.NewBuilder()
	bm := bitutil.NewBitmap()
	for _, g := range groups {
		for i, v := range g {
			b.Append(v)
			bm.Append(i == len(g)-1)
		}
	}
	bm.Seal()
	return New(b.BuildLog64(), bm)
}

func TestListFindLast(t *testing.T) {
	groups := [][]uint64{
		{10, 20, 30},
		{5, 6},
		{99},
	}
	l := buildList(t, groups)

	if got := l.CountLists(); got != 3 {
		t.Fatalf("CountLists() = %d, want 3", got)
	}

	wantFind := []uint64{0, 3, 5}
	wantLast := []uint64{2, 4, 5}
	for i := 0; i < 3; i++ {
		x := uint64(i + 1)
		if got := l.Find(x); got != wantFind[i] {
			t.Errorf("Find(%d) = %d, want %d", x, got, wantFind[i])
		}
		if got := l.Last(x); got != wantLast[i] {
			t.Errorf("Last(%d) = %d, want %d", x, got, wantLast[i])
		}
		if got := l.CountItemsY(x); got != uint64(len(groups[i])) {
			t.Errorf("CountItemsY(%d) = %d, want %d", x, got, len(groups[i]))
		}
	}
}

func TestListFindXY(t *testing.T) {
	groups := [][]uint64{
		{10, 20, 30},
		{5, 6},
	}
	l := buildList(t, groups)

	pos, err := l.FindXY(1, 20)
	if err != nil {
		t.Fatalf("FindXY(1,20) error: %v", err)
	}
	if pos != 1 {
		t.Errorf("FindXY(1,20) = %d, want 1", pos)
	}

	if _, err := l.FindXY(1, 99); err != ErrNotFound {
		t.Errorf("FindXY(1,99) err = %v, want ErrNotFound", err)
	}

	if _, err := l.FindXY(2, 10); err != ErrNotFound {
		t.Errorf("FindXY(2,10) err = %v, want ErrNotFound", err)
	}
}

func TestFindListIndex(t *testing.T) {
	groups := [][]uint64{
		{10, 20, 30},
		{5, 6},
	}
	l := buildList(t, groups)

	for pos := uint64(0); pos < 3; pos++ {
		if got := l.FindListIndex(pos); got != 1 {
			t.Errorf("FindListIndex(%d) = %d, want 1", pos, got)
		}
	}
	for pos := uint64(3); pos < 5; pos++ {
		if got := l.FindListIndex(pos); got != 2 {
			t.Errorf("FindListIndex(%d) = %d, want 2", pos, got)
		}
	}
}

func TestListSerializeRoundtrip(t *testing.T) {
	groups := [][]uint64{
		{10, 20, 30},
		{5, 6},
		{99},
	}
	l := buildList(t, groups)
	buf := l.Bytes()
	got, n, err := LoadList(buf)
	if err != nil {
		t.Fatalf("LoadList: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("LoadList consumed %d bytes, want %d", n, len(buf))
	}
	if got.CountLists() != l.CountLists() {
		t.Fatalf("CountLists() = %d, want %d", got.CountLists(), l.CountLists())
	}
	for i := 0; i < l.Elements.Len(); i++ {
		if got.Get(uint64(i)) != l.Get(uint64(i)) {
			t.Fatalf("Get(%d) = %d, want %d", i, got.Get(uint64(i)), l.Get(uint64(i)))
		}
	}
}
