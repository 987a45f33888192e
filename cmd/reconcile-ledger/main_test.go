package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeXlsx(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	settlement := filepath.Join(dir, "settlement.xlsx")
	orders := filepath.Join(dir, "orders.xlsx")
	writeXlsx(t, settlement, [][]string{
		{"订单号", "售后单号", "结算时间", "规格ID", "商品实付/实退", "运费", "商家优惠", "平台优惠补贴", "佣金总额", "分销佣金"},
		{"O1", "", "2024-03-05 10:00:00", "V1", "100", "6", "0", "0", "10", "2"},
	})
	writeXlsx(t, orders, [][]string{
		{"订单号", "规格ID", "商家编码", "商品总价(元)", "SKU件数", "下单时间"},
		{"O1", "V1", "ABC-1", "100", "1", "2024-03-01"},
	})
	out := filepath.Join(dir, "ledger.xlsx")

	cases := []struct {
		name   string
		args   []string
		code   int
		stdout string
		stderr string
	}{
		{
			name:   "reconciled",
			args:   []string{"-year", "2024", "-month", "3", "-out", out, orders, settlement},
			code:   0,
			stdout: "net receivable:         118.00",
		},
		{
			name:   "missing period",
			args:   []string{settlement, orders},
			code:   1,
			stderr: "--year and --month are required",
		},
		{
			name:   "missing orders file",
			args:   []string{"-year", "2024", "-month", "3", settlement},
			code:   1,
			stderr: "missing orders file",
		},
		{
			name:   "no input files",
			args:   []string{"-year", "2024", "-month", "3"},
			code:   1,
			stderr: "at least one input file",
		},
		{
			name:   "platform not available",
			args:   []string{"-platform", "douyin", "-year", "2024", "-month", "3", settlement, orders},
			code:   2,
			stderr: "not available yet",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(c.args, &stdout, &stderr)
			assert.Equal(t, c.code, code, stderr.String())
			if c.stdout != "" {
				assert.Contains(t, stdout.String(), c.stdout)
			}
			if c.stderr != "" {
				assert.Contains(t, stderr.String(), c.stderr)
			}
		})
	}

	_, err := os.Stat(out)
	require.NoError(t, err)
}
