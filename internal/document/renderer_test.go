package document

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPDFRendererWritesEveryPage(t *testing.T) {
	summary, clusters := build(append(participants("Tree Planting", 90), participants("Blood Donation", 3)...))
	doc := Compose(summary, clusters)
	require.Greater(t, doc.Pages, 1)

	var buf bytes.Buffer
	r, err := RendererFor("pdf")
	require.NoError(t, err)
	require.NoError(t, r.Render(&buf, doc))

	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	require.Equal(t, doc.Pages, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")))
}

func TestXLSXRendererWritesSections(t *testing.T) {
	summary, clusters := build(participants("Tree Planting", 2))
	doc := Compose(summary, clusters)

	var buf bytes.Buffer
	r, err := RendererFor("XLSX")
	require.NoError(t, err)
	require.Equal(t, "xlsx", r.Extension())
	require.NoError(t, r.Render(&buf, doc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(reportSheet, "A1")
	require.NoError(t, err)
	require.Equal(t, "Activity Report Summary - 2024", title)

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	var found bool
	for _, row := range rows {
		if len(row) > 0 && row[0] == "Activity: Tree Planting" {
			found = true
		}
	}
	require.True(t, found)
}

func TestRendererForUnknownFormat(t *testing.T) {
	_, err := RendererFor("docx")
	require.Error(t, err)
}
