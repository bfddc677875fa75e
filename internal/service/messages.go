package service

import (
	"fmt"
	"strings"

	"investment-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Notification texts shown on the dashboard.

func msgDepositConfirmed(amount decimal.Decimal, method string) string {
	return fmt.Sprintf("Your deposit of %s %s has been confirmed and added to your wallet.", amount, method)
}

func msgDepositNoWallet(amount decimal.Decimal, method string) string {
	return fmt.Sprintf("Your deposit of %s %s has been confirmed, but no corresponding wallet was found.", amount, method)
}

func msgDepositStatus(status string) string {
	return fmt.Sprintf("Your deposit status has been updated to: %s", status)
}

func msgVerificationStatus(status domain.VerificationStatus) string {
	return fmt.Sprintf("Your account verification status has been updated to: %s", strings.ReplaceAll(string(status), "_", " "))
}

func msgReferralReward(reward decimal.Decimal, currency string) string {
	return fmt.Sprintf("You earned %s %s from a referral deposit", reward.StringFixed(2), currency)
}

func msgWithdrawalConfirmed(amount decimal.Decimal, asset string) string {
	return fmt.Sprintf("Your withdrawal of %s %s has been confirmed and deducted from your wallet.", amount, asset)
}

func msgWithdrawalInsufficient(amount, available decimal.Decimal, asset string) string {
	return fmt.Sprintf("Your withdrawal of %s %s could not be confirmed: available balance is %s %s.", amount, asset, available, asset)
}

func msgWithdrawalStatus(status string) string {
	return fmt.Sprintf("Your withdrawal status has been updated to: %s", status)
}

func msgConverted(fromAmount decimal.Decimal, from string, toAmount decimal.Decimal, to string) string {
	return fmt.Sprintf("Successfully converted %s %s to %s %s", fromAmount, from, toAmount.Round(8), to)
}

func msgStaked(amount decimal.Decimal, coin string, days int) string {
	return fmt.Sprintf("Successfully staked %s %s for %d days", amount, coin, days)
}

func msgStakeMatured(coin string, total, reward decimal.Decimal) string {
	return fmt.Sprintf("Your %s stake has matured! Received %s %s (including %s rewards)", coin, total.Round(8), coin, reward.Round(8))
}

func msgStakeEarly(amount decimal.Decimal, coin string) string {
	return fmt.Sprintf("Unstaked %s %s early (no rewards earned)", amount, coin)
}

func msgSubscribed(plan string, amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("Subscribed to %s with %s %s", plan, amount, currency)
}

func msgSignalPurchased(pkg string, price decimal.Decimal, currency string) string {
	return fmt.Sprintf("Purchased signal %s for %s %s", pkg, price, currency)
}

func msgReferralWithdrawn(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("Withdrew %s %s referral earnings", amount, currency)
}
