package token

import "solana-rent-reclaimer/internal/txn"

// closeAccountIndex is the CloseAccount variant of the token instruction enum.
const closeAccountIndex = 9

// NewCloseAccountInstruction builds a CloseAccount instruction: account is
// closed, its lamports are sent to destination, authority must sign.
func NewCloseAccountInstruction(account, destination, authority string) txn.Instruction {
	return txn.Instruction{
		ProgramID: ProgramID,
		Accounts: []txn.AccountMeta{
			{Pubkey: account, IsWritable: true},
			{Pubkey: destination, IsWritable: true},
			{Pubkey: authority, IsSigner: true},
		},
		Data: []byte{closeAccountIndex},
	}
}
