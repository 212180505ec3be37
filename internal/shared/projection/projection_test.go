package projection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPage_Normalize(t *testing.T) {
	require.Equal(t, Page{Number: 0, Size: DefaultPageSize}, Page{Number: -2}.Normalize())
	require.Equal(t, Page{Number: 1, Size: MaxPageSize}, Page{Number: 1, Size: 1000}.Normalize())
	require.Equal(t, 20, Page{Number: 2, Size: 10}.Offset())
}

func TestWindow(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	first := Window(all, Page{Number: 0, Size: 2})
	require.Equal(t, []int{1, 2}, first.Items)
	require.Equal(t, int64(5), first.Total)
	require.Equal(t, 3, first.TotalPages())

	last := Window(all, Page{Number: 2, Size: 2})
	require.Equal(t, []int{5}, last.Items)

	past := Window(all, Page{Number: 9, Size: 2})
	require.Empty(t, past.Items)
	require.Equal(t, int64(5), past.Total)
}
