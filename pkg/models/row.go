package models

// Column describes one relational column of a record.
type Column struct {
	Name string
	Type string
}

// SQLRow is implemented by records that can be written to a SQL table.
// SQLValues must return values in SQLColumns order.
type SQLRow interface {
	SQLColumns() []Column
	SQLValues() []interface{}
}
