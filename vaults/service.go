package vaults

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/datastore"
	"github.com/stablevault/solana-vault-api/errors"
	"github.com/stablevault/solana-vault-api/events"
	"github.com/stablevault/solana-vault-api/instructions"
	"github.com/stablevault/solana-vault-api/solana_helpers"
	"github.com/stablevault/solana-vault-api/transactions"
)

// Service drives vault state: settlement account linking, lock and
// unlock bookkeeping and the chain-facing withdraw paths.
//
// Single-signer operations require the vault owner key to be the
// configured fee payer; externally owned vaults go through the multisig
// coordinator instead.
type Service struct {
	store       Store
	txService   *transactions.Service
	client      *rpc.Client
	broker      *events.Broker
	programID   solana.PublicKey
	pmProgramID solana.PublicKey
	mint        solana.PublicKey
}

func NewService(
	store Store,
	txService *transactions.Service,
	client *rpc.Client,
	broker *events.Broker,
	programID, pmProgramID, mint solana.PublicKey,
) *Service {
	return &Service{
		store:       store,
		txService:   txService,
		client:      client,
		broker:      broker,
		programID:   programID,
		pmProgramID: pmProgramID,
		mint:        mint,
	}
}

func (s *Service) List(limit, offset int) ([]Vault, error) {
	o := datastore.ParseListOptions(limit, offset)
	return s.store.Vaults(o)
}

func (s *Service) Details(owner string) (Vault, error) {
	if _, err := solana_helpers.ValidateAddress(owner); err != nil {
		return Vault{}, err
	}
	v, err := s.store.Vault(owner)
	if err != nil && err.Error() == "record not found" {
		return Vault{}, errors.NotFound("vault not found for owner %s", owner)
	}
	return v, err
}

func (s *Service) TVL() (int64, error) {
	return s.store.TVL()
}

func (s *Service) LinkSettlementAccount(owner, settlementAccount string) (Vault, error) {
	if _, err := solana_helpers.ValidateAddress(owner); err != nil {
		return Vault{}, err
	}
	if _, err := solana_helpers.ValidateAddress(settlementAccount); err != nil {
		return Vault{}, err
	}
	if err := s.store.UpsertSettlementAccount(owner, settlementAccount); err != nil {
		return Vault{}, err
	}
	return s.store.Vault(owner)
}

// Initialize creates the on-chain vault account for an owner.
func (s *Service) Initialize(ctx context.Context, owner string) (*transactions.Transaction, error) {
	ownerPk, err := solana_helpers.ValidateAddress(owner)
	if err != nil {
		return nil, err
	}

	ix, err := instructions.InitializeVault(instructions.InitializeVaultParams{
		ProgramID: s.programID,
		Owner:     ownerPk,
		Mint:      s.mint,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.store.EnsureVault(owner); err != nil {
		return nil, err
	}

	return s.txService.Submit(ctx, transactions.KindDeposit, owner, 0, ix)
}

// Lock reserves part of a vault's balance against open positions. The
// ledger adjustment happens first so the invariant gates the submission.
func (s *Service) Lock(ctx context.Context, owner string, amount uint64) (*transactions.Transaction, error) {
	ownerPk, err := solana_helpers.ValidateAddress(owner)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, errors.InvalidInput("amount must be positive")
	}

	if _, err := s.store.AdjustLocked(owner, int64(amount)); err != nil {
		return nil, errors.NotAllowed("%s", err.Error())
	}

	ix, err := instructions.PositionManagerLock(instructions.PositionManagerParams{
		PositionManagerProgramID: s.pmProgramID,
		VaultProgramID:           s.programID,
		Owner:                    ownerPk,
		Amount:                   amount,
	})
	if err != nil {
		s.revertLocked(owner, -int64(amount))
		return nil, err
	}

	t, err := s.txService.Submit(ctx, transactions.KindLock, owner, int64(amount), ix)
	if err != nil {
		s.revertLocked(owner, -int64(amount))
		return nil, err
	}

	return t, nil
}

// Unlock releases previously locked balance.
func (s *Service) Unlock(ctx context.Context, owner string, amount uint64) (*transactions.Transaction, error) {
	ownerPk, err := solana_helpers.ValidateAddress(owner)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, errors.InvalidInput("amount must be positive")
	}

	if _, err := s.store.AdjustLocked(owner, -int64(amount)); err != nil {
		return nil, errors.NotAllowed("%s", err.Error())
	}

	ix, err := instructions.PositionManagerUnlock(instructions.PositionManagerParams{
		PositionManagerProgramID: s.pmProgramID,
		VaultProgramID:           s.programID,
		Owner:                    ownerPk,
		Amount:                   amount,
	})
	if err != nil {
		s.revertLocked(owner, int64(amount))
		return nil, err
	}

	t, err := s.txService.Submit(ctx, transactions.KindUnlock, owner, int64(amount), ix)
	if err != nil {
		s.revertLocked(owner, int64(amount))
		return nil, err
	}

	return t, nil
}

func (s *Service) revertLocked(owner string, delta int64) {
	if _, err := s.store.AdjustLocked(owner, delta); err != nil {
		log.
			WithFields(log.Fields{"error": err, "owner": owner, "delta": delta}).
			Error("Could not revert locked balance after failed submission")
	}
}

// prepareWithdraw validates the request against the ledger and builds the
// single-signer withdraw instruction.
func (s *Service) prepareWithdraw(owner string, amount uint64) (solana.Instruction, error) {
	ownerPk, err := solana_helpers.ValidateAddress(owner)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, errors.InvalidInput("amount must be positive")
	}

	v, err := s.store.Vault(owner)
	if err == nil && int64(amount) > v.AvailableBalance {
		return nil, errors.NotAllowed("withdraw %d exceeds available balance %d", amount, v.AvailableBalance)
	}

	return instructions.Withdraw(instructions.WithdrawParams{
		ProgramID: s.programID,
		Owner:     ownerPk,
		Mint:      s.mint,
		Amount:    amount,
	})
}

func (s *Service) publishWithdrawal(owner string, amount uint64, signature string) {
	s.broker.Publish(events.Event{
		Type: events.WithdrawalSubmitted,
		Payload: map[string]interface{}{
			"owner":     owner,
			"amount":    amount,
			"signature": signature,
		},
	})
}

// SubmitWithdraw sends a single-signer withdraw for a service-owned vault.
func (s *Service) SubmitWithdraw(ctx context.Context, owner string, amount uint64) (*transactions.Transaction, error) {
	ix, err := s.prepareWithdraw(owner, amount)
	if err != nil {
		return nil, err
	}

	t, err := s.txService.Submit(ctx, transactions.KindWithdraw, owner, int64(amount), ix)
	if err != nil {
		return nil, err
	}

	s.publishWithdrawal(owner, amount, t.Signature)

	return t, nil
}

// SubmitWithdrawAsync signs the withdraw and queues the send on the
// worker pool. The returned row is pending with its signature assigned.
func (s *Service) SubmitWithdrawAsync(ctx context.Context, owner string, amount uint64) (*transactions.Transaction, error) {
	ix, err := s.prepareWithdraw(owner, amount)
	if err != nil {
		return nil, err
	}

	t, _, err := s.txService.SubmitAsync(ctx, transactions.KindWithdraw, owner, int64(amount), ix)
	if err != nil {
		return nil, err
	}

	s.publishWithdrawal(owner, amount, t.Signature)

	return t, nil
}

// ScheduleWithdraw registers an on-chain timelock and mirrors it locally
// so the sweep loop can flag the release.
func (s *Service) ScheduleWithdraw(ctx context.Context, owner string, amount uint64, duration time.Duration) (*transactions.Transaction, error) {
	ownerPk, err := solana_helpers.ValidateAddress(owner)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, errors.InvalidInput("amount must be positive")
	}
	if duration <= 0 {
		return nil, errors.InvalidInput("duration must be positive")
	}

	ix, err := instructions.ScheduleTimelock(instructions.ScheduleTimelockParams{
		ProgramID:       s.programID,
		Owner:           ownerPk,
		Amount:          amount,
		DurationSeconds: int64(duration / time.Second),
	})
	if err != nil {
		return nil, err
	}

	t, err := s.txService.Submit(ctx, transactions.KindWithdraw, owner, int64(amount), ix)
	if err != nil {
		return nil, err
	}

	timelock := &Timelock{
		Owner:     owner,
		Amount:    int64(amount),
		ReleaseAt: time.Now().Add(duration),
	}
	if err := s.store.InsertTimelock(timelock); err != nil {
		log.
			WithFields(log.Fields{"error": err, "owner": owner}).
			Error("Timelock submitted but local mirror insert failed")
	}

	return t, nil
}

// EmergencyWithdraw drains a vault through the vault authority path.
func (s *Service) EmergencyWithdraw(ctx context.Context, owner string, amount uint64) (*transactions.Transaction, error) {
	ownerPk, err := solana_helpers.ValidateAddress(owner)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, errors.InvalidInput("amount must be positive")
	}

	ix, err := instructions.EmergencyWithdraw(instructions.EmergencyWithdrawParams{
		ProgramID: s.programID,
		Authority: s.txService.FeePayer(),
		Owner:     ownerPk,
		Mint:      s.mint,
		Amount:    amount,
	})
	if err != nil {
		return nil, err
	}

	return s.txService.Submit(ctx, transactions.KindEmergencyWithdraw, owner, int64(amount), ix)
}

// ChainBalance reads the vault token account balance straight from chain.
func (s *Service) ChainBalance(ctx context.Context, owner string) (uint64, error) {
	ownerPk, err := solana_helpers.ValidateAddress(owner)
	if err != nil {
		return 0, err
	}

	vault, _, err := solana_helpers.VaultAddress(ownerPk, s.programID)
	if err != nil {
		return 0, err
	}

	ata, err := solana_helpers.AssociatedTokenAddress(vault, s.mint)
	if err != nil {
		return 0, err
	}

	return solana_helpers.TokenBalance(ctx, s.client, ata)
}

func (s *Service) AuthorizedPrograms() ([]AuthorizedProgram, error) {
	return s.store.AuthorizedPrograms()
}

func (s *Service) AddAuthorizedProgram(programID, label string) error {
	if _, err := solana_helpers.ValidateAddress(programID); err != nil {
		return err
	}
	return s.store.InsertAuthorizedProgram(&AuthorizedProgram{ProgramID: programID, Label: label})
}

func (s *Service) RemoveAuthorizedProgram(programID string) error {
	return s.store.DeleteAuthorizedProgram(programID)
}

// BuildTransferCollateral builds (without submitting) a collateral move
// between two vaults for an allowlisted caller program.
func (s *Service) BuildTransferCollateral(callerProgram, fromOwner, toOwner string, amount uint64) (solana.Instruction, error) {
	callerPk, err := solana_helpers.ValidateAddress(callerProgram)
	if err != nil {
		return nil, err
	}
	fromPk, err := solana_helpers.ValidateAddress(fromOwner)
	if err != nil {
		return nil, err
	}
	toPk, err := solana_helpers.ValidateAddress(toOwner)
	if err != nil {
		return nil, err
	}

	allowed, err := s.store.IsAuthorizedProgram(callerProgram)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.NotAllowed("program %s is not authorized for collateral transfers", callerProgram)
	}

	return instructions.TransferCollateral(instructions.TransferCollateralParams{
		ProgramID:     s.programID,
		CallerProgram: callerPk,
		FromOwner:     fromPk,
		ToOwner:       toPk,
		Mint:          s.mint,
		Amount:        amount,
	})
}
