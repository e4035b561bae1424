package proposal

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanyInfo identifies the installer issuing the proposal
type CompanyInfo struct {
	Name    string
	Address string
}

// ClientInfo identifies the proposal recipient
type ClientInfo struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// LineRow is a single device entry within a section
type LineRow struct {
	DeviceName string
	DeviceCode string
	Quantity   int
	UnitPrice  decimal.Decimal
	Amount     decimal.Decimal
}

// Section is one location of the project, flattened in tree order
type Section struct {
	Name        string
	Description string
	Depth       int
	Items       []LineRow
	Subtotal    decimal.Decimal
}

// Document is the full data model fed to the proposal template
type Document struct {
	Title       string
	Company     CompanyInfo
	Client      ClientInfo
	ProjectName string
	Description string
	Status      string
	Sections    []Section
	TotalCost   decimal.Decimal
	GeneratedAt time.Time
}
