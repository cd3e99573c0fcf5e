package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"finledger/internal/ledger"
	"finledger/internal/storage"
)

// effectDirection tags which way an amount moves on its target balance.
// Resolving it once per transaction replaces the stringly-typed
// add/subtract dispatch with a closed set of cases.
type effectDirection int

const (
	bankDeposit effectDirection = iota
	bankWithdraw
	cardCharge
	cardSettle
)

func (d effectDirection) inverse() effectDirection {
	switch d {
	case bankDeposit:
		return bankWithdraw
	case bankWithdraw:
		return bankDeposit
	case cardCharge:
		return cardSettle
	default:
		return cardCharge
	}
}

// effect is the monetary side effect of one transaction on exactly one target:
// a bank account balance or a card invoice balance.
type effect struct {
	dir      effectDirection
	targetID uuid.UUID
	amount   money.Amount
}

// incomeEffect resolves the effect of an income: its bank gains the amount.
func incomeEffect(in ledger.Income) effect {
	return effect{dir: bankDeposit, targetID: in.BankAccountID, amount: in.Amount}
}

// expenseEffect resolves the effect of recording an expense: bank-backed
// methods withdraw the total from the bank, credit charges it onto the card.
func expenseEffect(e ledger.Expense) effect {
	if e.Method.UsesCard() {
		return effect{dir: cardCharge, targetID: e.CardID, amount: e.TotalAmount}
	}
	return effect{dir: bankWithdraw, targetID: e.BankAccountID, amount: e.TotalAmount}
}

// expenseReversalEffect resolves what deleting an expense must undo. For a
// credit expense only the outstanding amount is still on the invoice balance
// (paid installments already settled their share), so reversing the original
// total would double-reverse. Bank-backed methods always reverse the total.
func expenseReversalEffect(e ledger.Expense) (effect, error) {
	if e.Method.UsesCard() {
		outstanding, err := e.Outstanding()
		if err != nil {
			return effect{}, err
		}
		return effect{dir: cardSettle, targetID: e.CardID, amount: outstanding}, nil
	}
	return effect{dir: bankDeposit, targetID: e.BankAccountID, amount: e.TotalAmount}, nil
}

// applyEffect mutates the target balance through its debit/credit methods so
// every mutation site is traceable. It must run inside the store transaction.
func applyEffect(ctx context.Context, st storage.Store, ownerID uuid.UUID, ef effect) error {
	switch ef.dir {
	case bankDeposit, bankWithdraw:
		acct, err := st.GetBankAccount(ctx, ownerID, ef.targetID)
		if err != nil {
			return err
		}
		if ef.dir == bankDeposit {
			_, err = acct.Deposit(ef.amount)
		} else {
			_, err = acct.Withdraw(ef.amount)
		}
		if err != nil {
			return err
		}
		_, err = st.UpdateBankAccount(ctx, acct)
		return err
	default:
		card, err := st.GetCreditCard(ctx, ownerID, ef.targetID)
		if err != nil {
			return err
		}
		if ef.dir == cardCharge {
			_, err = card.Charge(ef.amount)
		} else {
			_, err = card.Settle(ef.amount)
		}
		if err != nil {
			return err
		}
		_, err = st.UpdateCreditCard(ctx, card)
		return err
	}
}

// reverseEffect undoes a previously applied effect.
func reverseEffect(ctx context.Context, st storage.Store, ownerID uuid.UUID, ef effect) error {
	ef.dir = ef.dir.inverse()
	return applyEffect(ctx, st, ownerID, ef)
}
