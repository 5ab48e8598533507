package export

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukydev/pantry-finder/internal/models"
	"github.com/ukydev/pantry-finder/internal/store"
)

var pantries = []models.Pantry{
	{Organizations: "Food Bank A", Address: "1 Main St", City: "Durham", Days: "Mon", Hours: "9-5", Latitude: 36, Longitude: -78.9},
	{Organizations: "Lost Pantry", City: "Durham", Latitude: 200},
}

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestWriteXLSX_Alphabetical(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, store.Snapshot{Derived: pantries, EffectiveSort: store.Alphabetical})
	require.NoError(t, err)

	rows := readRows(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, "Organization", rows[0][0])
	assert.Len(t, rows[0], 10)
	assert.Equal(t, []string{"Food Bank A", "1 Main St", "Durham", "Mon", "9-5"}, rows[1][:5])
	assert.Equal(t, "Lost Pantry", rows[2][0])
}

func TestWriteXLSX_Ranked(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, store.Snapshot{
		Derived:       pantries,
		Distances:     []float64{1234.4, math.Inf(1)},
		EffectiveSort: store.Nearest,
	})
	require.NoError(t, err)

	rows := readRows(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, "Distance (m)", rows[0][10])
	assert.Equal(t, "1234", rows[1][10])
	assert.Less(t, len(rows[2]), 11, "unrankable distance left blank")
}

func TestWriteXLSX_NonFiniteCoordinates(t *testing.T) {
	broken := models.Pantry{Organizations: "Broken Pantry", City: "Durham", Latitude: math.NaN(), Longitude: math.Inf(1)}

	var buf bytes.Buffer
	err := WriteXLSX(&buf, store.Snapshot{Derived: []models.Pantry{pantries[0], broken}, EffectiveSort: store.Alphabetical})
	require.NoError(t, err)

	rows := readRows(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, "36", rows[1][8])
	assert.Equal(t, "Broken Pantry", rows[2][0])
	assert.Less(t, len(rows[2]), 9, "non-finite coordinates left blank")
}

func TestWriteXLSX_EmptyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, store.Snapshot{Derived: []models.Pantry{}}))

	rows := readRows(t, buf.Bytes())
	assert.Len(t, rows, 1)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteXLSX_WriterError(t *testing.T) {
	err := WriteXLSX(failingWriter{}, store.Snapshot{Derived: pantries})
	assert.ErrorContains(t, err, "disk full")
}
