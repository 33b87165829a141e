package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadCSV(t *testing.T) {
	data := "\xef\xbb\xbfCOMPANY NAME,SUM of COST\nAcme Traders,\"1,200.00\"\n,\n"
	table, err := Read("sales.csv", strings.NewReader(data), Options{})
	require.NoError(t, err)
	require.Len(t, table.Lines, 3)
	assert.Equal(t, "sales.csv", table.Name)
	assert.Equal(t, []string{"COMPANY NAME", "SUM of COST"}, table.Lines[0])
	assert.Equal(t, "1,200.00", table.Lines[1][1])
}

func TestReadCSVKeepsSourceLineNumbers(t *testing.T) {
	data := "COMPANY NAME,SUM of COST\nAcme Traders,500\n\nBaraka Stores,\"multi\nline\"\nKilele Foods,N/A\n"
	table, err := ReadCSV(strings.NewReader(data), Options{})
	require.NoError(t, err)
	require.Len(t, table.Lines, 6)
	assert.Empty(t, table.Lines[2])
	assert.Equal(t, "Baraka Stores", table.Lines[3][0])
	assert.Empty(t, table.Lines[4])
	assert.Equal(t, []string{"Kilele Foods", "N/A"}, table.Lines[5])
}

func TestReadCSVDecodesWindows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("COMPANY NAME,SUM of COST\nCafé Olé,50\n")
	require.NoError(t, err)

	table, err := ReadCSV(strings.NewReader(encoded), Options{Encoding: EncodingAuto})
	require.NoError(t, err)
	assert.Equal(t, "Café Olé", table.Lines[1][0])
}

func TestReadRejectsUnknownExtension(t *testing.T) {
	_, err := Read("sales.pdf", strings.NewReader(""), Options{})
	require.Error(t, err)
}

func TestXLSXWriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	header := []string{"NAME", "AMOUNT"}
	rows := [][]string{{"Acme Traders", "1200.00"}, {"Baraka Stores", "350.00"}}
	require.NoError(t, WriteXLSX(&buf, "Bank", header, rows))

	data := buf.Bytes()
	table, err := ReadXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "Bank", table.Name)
	assert.Equal(t, append([][]string{header}, rows...), table.Lines)

	named, err := Read("uploads/batch.xlsx", bytes.NewReader(data), Options{})
	require.NoError(t, err)
	assert.Equal(t, "batch.xlsx", named.Name)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, "", []string{"A", "B"}, [][]string{{"x, y", "1"}}))
	assert.Equal(t, "A,B\n\"x, y\",1\n", buf.String())

	require.Error(t, Write(&buf, "pdf", "", nil, nil))
}
