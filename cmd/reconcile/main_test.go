package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunWritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	sales := writeFile(t, dir, "sales.csv", "COMPANY NAME,SUM of COST,COMMENT,MONTH,YEAR\n"+
		"Acme Traders,\"1,200.00\",,January,2026\n"+
		"Baraka Stores,350,,January,2026\n"+
		",,,,\n"+
		"Ghost Ltd,10,,January,2026\n")
	reg := writeFile(t, dir, "registry.csv", "COMPANY NAME,ACCOUNT,BRANCH,PROVIDER,NUMBER,HOLDER NAMES\n"+
		"Acme Traders,0012345,Westlands,,,\n"+
		"Baraka Stores,,,Safaricom,0712000000,B Mwangi\n")
	ledger := writeFile(t, dir, "ledger.csv", "PERIOD,COMPANY,AMOUNT,PAYMENT MODE\nDecember 2025,Old Co,99,A\n")
	out := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-sales", sales, "-registry", reg, "-ledger", ledger, "-org", "Kibanda", "-out", out}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	for _, name := range []string{"bank.csv", "mobile.csv", "exceptions.csv", "invalid.csv", "ledger.csv", "new-ledger.csv", "metrics.csv"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	bank, err := os.ReadFile(filepath.Join(out, "bank.csv"))
	require.NoError(t, err)
	assert.Equal(t, "NAME,ACCOUNT,BRANCH,AMOUNT,COMMENT\nAcme Traders,0012345,Westlands,1200.00,Kibanda January 2026 Sales\n", string(bank))

	merged, err := os.ReadFile(filepath.Join(out, "ledger.csv"))
	require.NoError(t, err)
	assert.Equal(t, "MONTH,YEAR,PERIOD,COMPANY NAME,AMOUNT,MODE,REFERENCE\n"+
		"December,2025,December 2025,Old Co,99.00,BANK,\n"+
		"January,2026,January 2026,Acme Traders,1200.00,BANK,Kibanda January 2026 Sales\n"+
		"January,2026,January 2026,Baraka Stores,350.00,MOBILE,Kibanda January 2026 Sales\n", string(merged))

	assert.Contains(t, stdout.String(), "Verification:")
	assert.Contains(t, stdout.String(), "PASS")
}

func TestRunStructuralErrorExitCode(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	sales := writeFile(t, dir, "sales.csv", "SUPPLIER,NOTES\nAcme,x\n")
	reg := writeFile(t, dir, "registry.csv", "COMPANY NAME,ACCOUNT\nAcme,1\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-sales", sales, "-registry", reg, "-out", filepath.Join(dir, "out")}, &stdout, &stderr)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr.String(), "SUM of COST")
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestRunRequiresInputs(t *testing.T) {
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitFailed, run([]string{"-sales", "x.csv"}, &stdout, &stderr))
	assert.Equal(t, exitFailed, run([]string{"-sales", "x.csv", "-registry", "y.csv", "-format", "pdf"}, &stdout, &stderr))
	assert.Equal(t, exitFailed, run([]string{"-sales", "x.csv", "-registry", "y.csv", "-threshold", "abc"}, &stdout, &stderr))
	assert.Equal(t, exitFailed, run([]string{"-sales", "x.csv", "-registry", "y.csv", "-threshold", "-5"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "invalid threshold -5")
}
