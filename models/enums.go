package models

type FileRole string

const (
	FileRoleSettlement FileRole = "settlement"
	FileRoleOrders     FileRole = "orders"
)

func (r FileRole) String() string { return string(r) }

// ColumnKind tells the table parser and the workbook writer how a raw column is typed.
type ColumnKind string

const (
	ColumnKindText   ColumnKind = "Text"
	ColumnKindAmount ColumnKind = "Amount"
)

type FileFormat string

const (
	FileFormatXlsx FileFormat = "xlsx"
	FileFormatCsv  FileFormat = "csv"
)
