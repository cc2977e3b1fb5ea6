package types

// TableRenderer is implemented by results that can be drawn as a table
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
	EmptyMessage() string
}
