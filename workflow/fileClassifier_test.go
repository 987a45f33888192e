package workflow

import (
	"testing"

	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvFile(name, content string) models.RawFile {
	return models.RawFile{Name: name, Data: []byte(content)}
}

func TestClassifyHeader(t *testing.T) {
	cases := []struct {
		name   string
		header []string
		strict bool
		want   models.FileRole
		reason string
	}{
		{"settlement all markers", []string{"结算时间", "商品实付/实退", "佣金总额", "售后单号", "订单号"}, false, models.FileRoleSettlement, ""},
		{"settlement three markers", []string{"结算时间", "商品实付/实退", "佣金总额"}, false, models.FileRoleSettlement, ""},
		{"settlement three markers strict", []string{"结算时间", "商品实付/实退", "佣金总额"}, true, "", DiagnosticUnrecognized},
		{"orders all markers strict", []string{"商家编码", "商品总价(元)", "SKU件数", "下单时间"}, true, models.FileRoleOrders, ""},
		{"two markers", []string{"商家编码", "SKU件数", "订单号"}, false, "", DiagnosticUnrecognized},
		{"higher score wins", []string{"结算时间", "商品实付/实退", "佣金总额", "售后单号", "商家编码", "商品总价(元)", "SKU件数"}, false, models.FileRoleSettlement, ""},
		{"tie is ambiguous", []string{"结算时间", "商品实付/实退", "佣金总额", "商家编码", "商品总价(元)", "SKU件数"}, false, "", DiagnosticAmbiguous},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			header := make([]string, len(c.header))
			for i, h := range c.header {
				header[i] = models.NormalizeHeader(h)
			}
			role, _, diag := ClassifyHeader(header, ClassifierOptions{RequireAllMarkers: c.strict})
			assert.Equal(t, c.want, role)
			assert.Equal(t, c.reason, diag.Reason)
		})
	}
}

func TestClassifyFilesFullWidthHeader(t *testing.T) {
	orders := csvFile("orders.csv", "商家编码,商品总价（元）,ＳＫＵ件数,下单时间\n")
	result, err := ClassifyFiles([]models.RawFile{orders}, ClassifierOptions{RequireAllMarkers: true})
	require.NoError(t, err)
	require.NotNil(t, result.Orders)
	assert.Equal(t, "orders.csv", result.Orders.File.Name)
}

func TestClassifyFilesPermutationInvariant(t *testing.T) {
	files := []models.RawFile{
		csvFile("b-settlement.csv", "结算时间,商品实付/实退,佣金总额,售后单号\n"),
		csvFile("a-settlement.csv", "结算时间,商品实付/实退,佣金总额,售后单号\n"),
		csvFile("weak-settlement.csv", "结算时间,商品实付/实退,佣金总额\n"),
		csvFile("orders.csv", "商家编码,商品总价(元),SKU件数,下单时间\n"),
		csvFile("notes.csv", "备注\n"),
		{Name: "broken.xlsx", Data: []byte("PK\x03\x04garbage")},
	}
	permutations := [][]int{
		{0, 1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1, 0},
		{2, 0, 5, 1, 3, 4},
		{3, 5, 1, 4, 0, 2},
	}

	var first *Classification
	for _, p := range permutations {
		input := make([]models.RawFile, len(p))
		for i, j := range p {
			input[i] = files[j]
		}
		result, err := ClassifyFiles(input, ClassifierOptions{})
		require.NoError(t, err)
		require.NoError(t, result.Require())

		assert.Equal(t, "a-settlement.csv", result.Settlement.File.Name)
		assert.Equal(t, "orders.csv", result.Orders.File.Name)
		if first == nil {
			first = result
			continue
		}
		assert.Equal(t, first.Names(), result.Names())
		assert.Equal(t, first.Diagnostics, result.Diagnostics)
	}

	reasons := map[string]string{}
	for _, d := range first.Diagnostics {
		reasons[d.File] = d.Reason
	}
	assert.Equal(t, DiagnosticDuplicateRole, reasons["b-settlement.csv"])
	assert.Equal(t, DiagnosticDuplicateRole, reasons["weak-settlement.csv"])
	assert.Equal(t, DiagnosticUnrecognized, reasons["notes.csv"])
	assert.Contains(t, reasons["broken.xlsx"], DiagnosticUnreadable)
}

func TestClassifyFilesMissingOrders(t *testing.T) {
	files := []models.RawFile{
		csvFile("s1.csv", "结算时间,商品实付/实退,佣金总额,售后单号\n"),
		csvFile("s2.csv", "结算时间,商品实付/实退,佣金总额,售后单号\n"),
	}
	result, err := ClassifyFiles(files, ClassifierOptions{})
	require.NoError(t, err)

	var missing *models.MissingInputError
	require.ErrorAs(t, result.Require(), &missing)
	assert.Equal(t, models.FileRoleOrders, missing.Role)
}

func TestClassifyFilesMissingSettlementFirst(t *testing.T) {
	result, err := ClassifyFiles(nil, ClassifierOptions{})
	require.NoError(t, err)

	var missing *models.MissingInputError
	require.ErrorAs(t, result.Require(), &missing)
	assert.Equal(t, models.FileRoleSettlement, missing.Role)
}
