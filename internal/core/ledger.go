package core

// Ledger column names, as found in the header row of the spreadsheet.
const (
	ColDate        = "Fecha"
	ColType        = "Tipo"
	ColAmount      = "Monto"
	ColCategory    = "Categoría"
	ColMethod      = "Método"
	ColDescription = "Descripción"
	ColSender      = "Remitente"
)

// Columns lists the ledger columns in storage order.
var Columns = []string{ColDate, ColType, ColAmount, ColCategory, ColMethod, ColDescription, ColSender}

// Row is one ledger row as read from storage. Values are untyped strings;
// consumers coerce what they need.
type Row map[string]string

// Values returns the row's cells in Columns order.
func (r Row) Values() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = r[c]
	}
	return out
}
