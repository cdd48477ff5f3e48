package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType identifies a sub-portfolio of a simulation session.
type AccountType int

const (
	AccountTypeStock AccountType = iota + 1
	AccountTypeFuture
	AccountTypeBenchmark
)

func (a AccountType) String() string {
	switch a {
	case AccountTypeStock:
		return "STOCK"
	case AccountTypeFuture:
		return "FUTURE"
	case AccountTypeBenchmark:
		return "BENCHMARK"
	default:
		return "UNKNOWN"
	}
}

// ParseAccountType is the case-insensitive inverse of AccountType.String.
func ParseAccountType(s string) (AccountType, bool) {
	for _, a := range []AccountType{AccountTypeStock, AccountTypeFuture, AccountTypeBenchmark} {
		if strings.EqualFold(a.String(), s) {
			return a, true
		}
	}
	return 0, false
}

type PortfolioValuer interface {
	PortfolioValue() decimal.Decimal
}

// Accounts is the set of active accounts of a simulation session.
// It is owned by the session and handed to reads that need a cross-account lookup.
type Accounts map[AccountType]PortfolioValuer
