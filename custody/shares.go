package custody

// SplitShares divides the deposit the way the contract does: each recipient
// gets half of it and the remainder goes back to the depositor.
func SplitShares(amount int64) (share, remainder int64, err error) {
	if amount <= 0 {
		return 0, 0, ErrZeroValueDeposit
	}

	share = amount / 2
	return share, amount - 2*share, nil
}
