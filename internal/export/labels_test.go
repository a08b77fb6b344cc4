package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	require.NoError(t, ExportLabels(path, buildTestResult()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500))
}

func TestWriteLabels_MultiplePages(t *testing.T) {
	result := model.LoadResult{}
	for i := 0; i < labelsPerPage+5; i++ {
		result.Placements = append(result.Placements, model.PlacedItem{
			ContainerInstanceID: "C1-1",
			PalletTypeID:        fmt.Sprintf("P%d", i),
			StackCount:          1,
			Row:                 1,
			Col:                 i + 1,
			Layer:               1,
		})
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLabels(&buf, result))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestExportLabels_EmptyResult(t *testing.T) {
	err := ExportLabels(filepath.Join(t.TempDir(), "empty.pdf"), model.LoadResult{})
	assert.True(t, errors.Is(err, ErrNothingToExport))
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestResult())

	require.Len(t, labels, 4)
	assert.Equal(t, "EUR-X2", labels[0].Text())
	assert.Equal(t, "C1-1", labels[0].Container)
	assert.Equal(t, "run-1", labels[0].RunID)
	assert.Equal(t, 2, labels[1].Col)
	assert.Equal(t, 200.0, labels[2].Z)
	assert.Equal(t, 5, labels[2].Layer)
	assert.Equal(t, "C2-1", labels[3].Container)
}

func TestLabelInfo_JSONPayload(t *testing.T) {
	info := LabelInfo{Container: "C1-1", PalletID: "EUR", StackCount: 2, Row: 1, Col: 3, Layer: 1, X: 240}

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "EUR", decoded["pallet"])
	assert.Equal(t, 240.0, decoded["x_cm"])
	assert.NotContains(t, decoded, "run", "empty run id is omitted")
}
