/*
Package splitter implements Splitter contract which keeps custody of GAS
deposits split between two recipients.

A depositor calls split specifying two recipients and an amount. The contract
pulls the amount from the depositor, credits each recipient with half of it
and credits the indivisible remainder (0 or 1) back to the depositor. Credited
GAS stays in the contract until its owner withdraws the whole balance.

The contract has an administrator-controlled lifecycle. The pauser (or the
owner) can suspend and resume it, while the owner can destroy a suspended
ledger sweeping all GAS held by the contract to the owner account. A destroyed
ledger keeps no data and ignores every later call.

# Contract notifications

Split notification. It is produced on every successful split.

	Split:
	  - name: depositor
	    type: Hash160
	  - name: recipientA
	    type: Hash160
	  - name: recipientB
	    type: Hash160
	  - name: amount
	    type: Integer

Withdrawal notification. It is produced when an account withdraws its balance.

	Withdrawal:
	  - name: account
	    type: Hash160
	  - name: amount
	    type: Integer

StateChanged notification. It is produced on suspend, resume and destroy.

	StateChanged:
	  - name: state
	    type: Integer
*/
package splitter

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'owner' -> interop.Hash160
   administrator account
 - 'pauser' -> interop.Hash160
   account allowed to suspend and resume the ledger
 - 'state' -> int
   current lifecycle state, see splitterconst
 - 'pending' -> int
   amount of the deposit being pulled by an ongoing split
 - 'tombstone' -> []byte{1}
   set once the ledger is destroyed, nothing else is stored then
 - b<interop.Hash160> -> int
   balance of the account

Every exported method checks the tombstone itself on entry, there is no shared
dispatcher in front of them.
*/
