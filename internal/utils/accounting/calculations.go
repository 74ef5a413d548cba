package accounting

import (
	"fmt"

	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the correct sign to a posting amount relative to the
// account's normal balance side. A posting on the account's normal side
// increases the balance; a posting on the opposite side decreases it.
//
// DEBIT posting to a debit-normal account   -> Positive (+)
// CREDIT posting to a debit-normal account  -> Negative (-)
// DEBIT posting to a credit-normal account  -> Negative (-)
// CREDIT posting to a credit-normal account -> Positive (+)
func SignedAmount(posting domain.Posting, normalSide domain.NormalSide) (decimal.Decimal, error) {
	switch normalSide {
	case domain.DebitNormal, domain.CreditNormal:
	default:
		return decimal.Zero, fmt.Errorf("unknown normal side '%s' encountered for account ID %s", normalSide, posting.AccountID)
	}
	switch posting.Side {
	case domain.Debit:
		if normalSide == domain.CreditNormal {
			return posting.Amount.Neg(), nil
		}
		return posting.Amount, nil
	case domain.Credit:
		if normalSide == domain.DebitNormal {
			return posting.Amount.Neg(), nil
		}
		return posting.Amount, nil
	}
	return decimal.Zero, fmt.Errorf("unknown posting side '%s' for posting %s", posting.Side, posting.PostingID)
}

// SumBySide returns the total debit and credit amounts of a posting set.
func SumBySide(postings []domain.Posting) (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, p := range postings {
		if p.Side == domain.Debit {
			debits = debits.Add(p.Amount)
		} else {
			credits = credits.Add(p.Amount)
		}
	}
	return debits, credits
}

// ReplayBalance recomputes an account balance from scratch by folding its
// postings along the account's normal side. This is the system-of-record
// figure the cached balance must always equal.
func ReplayBalance(postings []domain.Posting, normalSide domain.NormalSide) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, p := range postings {
		signed, err := SignedAmount(p, normalSide)
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(signed)
	}
	return balance, nil
}
