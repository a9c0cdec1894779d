package solana_helpers

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/jpillora/backoff"
	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/errors"
)

// DefaultSendRetries is the bound on submission attempts.
const DefaultSendRetries = 3

const sendRetryBaseDelay = 500 * time.Millisecond

// LatestBlockhash returns a current blockhash usable as a transaction
// reference value.
func LatestBlockhash(ctx context.Context, c *rpc.Client) (solana.Hash, error) {
	out, err := c.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("error while fetching blockhash: %w", err)
	}
	return out.Value.Blockhash, nil
}

// SendWithRetries submits a signed transaction, retrying transient failures
// up to `attempts` times with linearly increasing delay. The same signed
// payload is re-used across attempts; non-transient errors are surfaced
// immediately.
func SendWithRetries(ctx context.Context, c *rpc.Client, tx *solana.Transaction, attempts int) (solana.Signature, error) {
	if attempts < 1 {
		attempts = DefaultSendRetries
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		sig, err := c.SendTransaction(ctx, tx)
		if err == nil {
			return sig, nil
		}
		if !errors.IsChainConnectionError(err) {
			return solana.Signature{}, err
		}
		lastErr = err
		log.
			WithFields(log.Fields{"attempt": i + 1, "error": err}).
			Warn("Transaction submission failed, retrying")
		select {
		case <-ctx.Done():
			return solana.Signature{}, ctx.Err()
		case <-time.After(time.Duration(i+1) * sendRetryBaseDelay):
		}
	}

	return solana.Signature{}, errors.ChainGateway(lastErr)
}

// WaitForConfirmation polls the signature status until the cluster
// reports the transaction confirmed or finalized, or until the timeout
// passes. The poll interval grows with jitter so concurrent waiters do
// not stampede the RPC node.
func WaitForConfirmation(ctx context.Context, c *rpc.Client, sig solana.Signature, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		out, err := c.GetSignatureStatuses(ctx, false, sig)
		if err == nil && len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on chain", sig)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}

// TokenBalance returns the raw balance of a token account.
func TokenBalance(ctx context.Context, c *rpc.Client, account solana.PublicKey) (uint64, error) {
	out, err := c.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("error while fetching token balance: %w", err)
	}
	amount, err := strconv.ParseUint(out.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable token amount %q: %w", out.Value.Amount, err)
	}
	return amount, nil
}

// OnChainVault is the decoded vault program account.
type OnChainVault struct {
	Owner              solana.PublicKey
	TokenAccount       solana.PublicKey
	Mint               solana.PublicKey
	TotalBalance       uint64
	LockedBalance      uint64
	AvailableBalance   uint64
	TotalDeposited     uint64
	TotalWithdrawn     uint64
	YieldDeposited     uint64
	YieldAccrued       uint64
	LastCompoundedAt   int64
	ActiveYieldProgram solana.PublicKey
	CreatedAt          int64
	Bump               uint8
	MultisigThreshold  uint8
	MultisigSigners    []solana.PublicKey
}

// vault account layout: 8 byte discriminator, 3 pubkeys, 7 u64 balances,
// i64 timestamp, pubkey, i64 timestamp, bump, threshold, signer vec.
const vaultAccountMinLen = 8 + 32*3 + 8*7 + 8 + 32 + 8 + 1 + 1 + 4

// FetchVault reads and decodes the owner's vault account from the chain.
func FetchVault(ctx context.Context, c *rpc.Client, owner, program solana.PublicKey) (*OnChainVault, error) {
	address, _, err := VaultAddress(owner, program)
	if err != nil {
		return nil, err
	}

	info, err := c.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("error while fetching vault account: %w", err)
	}

	data := info.Value.Data.GetBinary()
	return decodeVaultAccount(data)
}

func decodeVaultAccount(data []byte) (*OnChainVault, error) {
	if len(data) < vaultAccountMinLen {
		return nil, fmt.Errorf("vault account too small: %d bytes", len(data))
	}

	v := &OnChainVault{}
	cur := 8 // skip discriminator

	readKey := func() solana.PublicKey {
		k := solana.PublicKeyFromBytes(data[cur : cur+32])
		cur += 32
		return k
	}
	readU64 := func() uint64 {
		u := binary.LittleEndian.Uint64(data[cur : cur+8])
		cur += 8
		return u
	}

	v.Owner = readKey()
	v.TokenAccount = readKey()
	v.Mint = readKey()
	v.TotalBalance = readU64()
	v.LockedBalance = readU64()
	v.AvailableBalance = readU64()
	v.TotalDeposited = readU64()
	v.TotalWithdrawn = readU64()
	v.YieldDeposited = readU64()
	v.YieldAccrued = readU64()
	v.LastCompoundedAt = int64(readU64())
	v.ActiveYieldProgram = readKey()
	v.CreatedAt = int64(readU64())
	v.Bump = data[cur]
	cur++
	v.MultisigThreshold = data[cur]
	cur++

	count := binary.LittleEndian.Uint32(data[cur : cur+4])
	cur += 4
	if len(data) < cur+int(count)*32 {
		return nil, fmt.Errorf("vault account signer list truncated")
	}
	for i := uint32(0); i < count; i++ {
		v.MultisigSigners = append(v.MultisigSigners, readKey())
	}

	return v, nil
}
