package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var demoCounterparties = []string{
	"Grocery Market", "City Transit", "Coffee House", "Electric Utility",
	"Online Books", "Pharmacy", "Employer Payroll", "Rent",
}

// DemoRows returns count deterministic transactions, one per day, ending at now.
// Identifiers are derived from the index, so they are stable across calls.
func DemoRows(now time.Time, count int) []Row {
	rows := make([]Row, 0, count)
	start := now.AddDate(0, 0, -(count - 1))

	for i := 0; i < count; i++ {
		counterparty := demoCounterparties[i%len(demoCounterparties)]

		var amount decimal.Decimal
		switch counterparty {
		case "Employer Payroll":
			amount = decimal.New(250000, -2)
		case "Rent":
			amount = decimal.New(-95000, -2)
		default:
			amount = decimal.New(-int64(i*137%9000+250), -2)
		}

		rows = append(rows, Row{
			TransactionID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("txagent-demo-%d", i))).String(),
			Date:          start.AddDate(0, 0, i).Format("2006-01-02"),
			Amount:        amount.StringFixed(2),
			Currency:      "EUR",
			Counterparty:  counterparty,
		})
	}

	return rows
}
