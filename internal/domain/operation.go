package domain

// Operation names a provider-independent capability.
type Operation string

const (
	OpSnapshot Operation = "snapshot"
	OpList     Operation = "list"
	OpDetails  Operation = "details"
	OpTeam     Operation = "team"
	OpNews     Operation = "news"
	OpSeries   Operation = "series"
)

// Operations lists every operation in a stable order.
var Operations = []Operation{OpSnapshot, OpList, OpDetails, OpTeam, OpNews, OpSeries}

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	for _, o := range Operations {
		if o == op {
			return true
		}
	}
	return false
}
