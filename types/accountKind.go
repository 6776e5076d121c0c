package types

// AccountKind selects the tax treatment an account simulates. The core
// ledger behaves identically for all kinds; receipts carry the realized
// gain breakdown so a reporting layer can apply the right rates.
type AccountKind string

const (
	Taxable        AccountKind = "TAXABLE"
	TraditionalIRA AccountKind = "TRADITIONAL_IRA"
	RothIRA        AccountKind = "ROTH_IRA"
)
