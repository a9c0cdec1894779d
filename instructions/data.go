package instructions

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/compute-budget"

	"github.com/stablevault/solana-vault-api/solana_helpers"
)

// payload assembles a method discriminator followed by its argument bytes.
func payload(method string, args ...[]byte) []byte {
	data := solana_helpers.Discriminator(method)
	for _, a := range args {
		data = append(data, a...)
	}
	return data
}

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func i64le(v int64) []byte {
	return u64le(uint64(v))
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// ComputeBudget returns the compute unit limit and price hints that precede
// every submitted operation instruction.
func ComputeBudget(units uint32, microLamports uint64) []solana.Instruction {
	return []solana.Instruction{
		computebudget.NewSetComputeUnitLimitInstruction(units).Build(),
		computebudget.NewSetComputeUnitPriceInstruction(microLamports).Build(),
	}
}
