package core

import (
	"reflect"
	"testing"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	cases := []struct {
		name       string
		page, size int
		wantItems  []int
		wantTotal  int
	}{
		{"first page", 1, 3, []int{1, 2, 3}, 3},
		{"middle page", 2, 3, []int{4, 5, 6}, 3},
		{"last partial page", 3, 3, []int{7}, 3},
		{"beyond range", 4, 3, []int{}, 3},
		{"far beyond range", 99, 3, []int{}, 3},
		{"page zero", 0, 3, []int{}, 3},
		{"exact multiple", 2, 7, []int{}, 1},
		{"size one", 5, 1, []int{5}, 7},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Paginate(items, c.page, c.size)
			if got.TotalPages != c.wantTotal {
				t.Errorf("TotalPages = %d, want %d", got.TotalPages, c.wantTotal)
			}
			if len(got.Items) != len(c.wantItems) {
				t.Fatalf("Items = %v, want %v", got.Items, c.wantItems)
			}
			if len(c.wantItems) > 0 && !reflect.DeepEqual(got.Items, c.wantItems) {
				t.Errorf("Items = %v, want %v", got.Items, c.wantItems)
			}
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	got := Paginate([]string{}, 1, 10)
	if got.TotalPages != 0 {
		t.Errorf("TotalPages = %d, want 0", got.TotalPages)
	}
	if len(got.Items) != 0 {
		t.Errorf("Items = %v, want empty", got.Items)
	}
}
