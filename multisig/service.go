package multisig

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/datastore"
	"github.com/stablevault/solana-vault-api/errors"
	"github.com/stablevault/solana-vault-api/events"
	"github.com/stablevault/solana-vault-api/instructions"
	"github.com/stablevault/solana-vault-api/solana_helpers"
)

const (
	multisigComputeUnits  = 1_200_000
	multisigPriorityPrice = 1_000
)

type BlockhashProvider func(ctx context.Context) (solana.Hash, error)

type Service struct {
	store     Store
	client    *rpc.Client
	broker    *events.Broker
	feePayer  solana.PrivateKey
	programID solana.PublicKey
	mint      solana.PublicKey
	blockhash BlockhashProvider
}

func NewService(
	store Store,
	client *rpc.Client,
	broker *events.Broker,
	feePayer solana.PrivateKey,
	programID, mint solana.PublicKey,
	opts ...ServiceOption,
) *Service {
	svc := &Service{
		store:     store,
		client:    client,
		broker:    broker,
		feePayer:  feePayer,
		programID: programID,
		mint:      mint,
	}

	svc.blockhash = func(ctx context.Context) (solana.Hash, error) {
		return solana_helpers.LatestBlockhash(ctx, svc.client)
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// ApprovalResult is what an approval submission reports back. Transaction
// carries the base64 partially signed withdrawal once the threshold is
// crossed; CoSigners lists the keys that still have to sign it.
type ApprovalResult struct {
	Ready       bool     `json:"ready"`
	Duplicate   bool     `json:"duplicate,omitempty"`
	Approvals   int      `json:"approvals"`
	Threshold   int      `json:"threshold"`
	Transaction string   `json:"transaction,omitempty"`
	Authority   string   `json:"authority,omitempty"`
	CoSigners   []string `json:"coSigners,omitempty"`
}

type ProposalStatus struct {
	Status    Status   `json:"status"`
	Approvals int      `json:"approvals"`
	Threshold int      `json:"threshold"`
	Signers   []string `json:"signers"`
}

// CreateProposal opens a withdrawal proposal. When threshold and signers
// are omitted the on-chain multisig configuration of the owner's vault is
// used instead.
func (s *Service) CreateProposal(ctx context.Context, owner string, amount uint64, threshold int, signers []string) (Proposal, error) {
	if _, err := solana_helpers.ValidateAddress(owner); err != nil {
		return Proposal{}, err
	}
	if amount == 0 {
		return Proposal{}, errors.InvalidInput("amount must be positive")
	}

	if threshold == 0 && len(signers) == 0 {
		chainThreshold, chainSigners, err := s.chainConfig(ctx, owner)
		if err != nil {
			return Proposal{}, err
		}
		threshold = chainThreshold
		signers = chainSigners
	}

	if threshold < 1 {
		return Proposal{}, errors.InvalidInput("threshold must be at least 1")
	}
	if threshold > len(signers) {
		return Proposal{}, errors.InvalidInput("threshold %d exceeds signer count %d", threshold, len(signers))
	}

	seen := make(map[string]bool, len(signers))
	for _, signer := range signers {
		if _, err := solana_helpers.ValidateAddress(signer); err != nil {
			return Proposal{}, err
		}
		if seen[signer] {
			return Proposal{}, errors.InvalidInput("duplicate signer %s", signer)
		}
		seen[signer] = true
	}

	signersJSON, err := json.Marshal(signers)
	if err != nil {
		return Proposal{}, err
	}

	proposal := Proposal{
		Owner:     owner,
		Amount:    int64(amount),
		Threshold: threshold,
		Signers:   signersJSON,
		Status:    StatusPending,
	}

	if err := s.store.InsertProposal(&proposal); err != nil {
		return Proposal{}, err
	}

	s.broker.Publish(events.Event{
		Type: events.ProposalCreated,
		Payload: map[string]interface{}{
			"proposalId": proposal.ID.String(),
			"owner":      owner,
			"amount":     amount,
			"threshold":  threshold,
		},
	})

	return proposal, nil
}

// Approve records an approval. Crossing the threshold flips the proposal
// to approved and yields the partially signed withdrawal; the signer that
// crossed becomes the initiating authority and is excluded from the
// remaining co-signer list.
func (s *Service) Approve(ctx context.Context, proposalID, signer, signature string) (ApprovalResult, error) {
	id, err := uuid.Parse(proposalID)
	if err != nil {
		return ApprovalResult{}, errors.InvalidInput("invalid proposal id")
	}
	if _, err := solana_helpers.ValidateAddress(signer); err != nil {
		return ApprovalResult{}, err
	}

	proposal, err := s.store.Proposal(id)
	if err != nil {
		if err.Error() == "record not found" {
			return ApprovalResult{}, errors.NotFound("proposal not found")
		}
		return ApprovalResult{}, err
	}

	allowed, err := proposal.SignerList()
	if err != nil {
		return ApprovalResult{}, err
	}
	if !contains(allowed, signer) {
		return ApprovalResult{}, errors.NotAllowed("signer %s is not in the proposal signer set", signer)
	}

	if proposal.Status == StatusApproved {
		count, err := s.store.ApprovalCount(id)
		if err != nil {
			return ApprovalResult{}, err
		}
		return ApprovalResult{
			Ready:     true,
			Duplicate: true,
			Approvals: count,
			Threshold: proposal.Threshold,
		}, nil
	}

	created, err := s.store.InsertApproval(&Approval{
		ProposalID: id,
		Signer:     signer,
		Signature:  signature,
	})
	if err != nil {
		return ApprovalResult{}, err
	}

	if created {
		s.broker.Publish(events.Event{
			Type: events.ApprovalRecorded,
			Payload: map[string]interface{}{
				"proposalId": id.String(),
				"signer":     signer,
			},
		})
	}

	count, err := s.store.ApprovalCount(id)
	if err != nil {
		return ApprovalResult{}, err
	}

	result := ApprovalResult{
		Duplicate: !created,
		Approvals: count,
		Threshold: proposal.Threshold,
	}

	if count < proposal.Threshold {
		return result, nil
	}

	txBase64, authority, coSigners, err := s.buildPartialWithdraw(ctx, &proposal)
	if err != nil {
		return ApprovalResult{}, err
	}

	proposal.Status = StatusApproved
	if err := s.store.UpdateProposal(&proposal); err != nil {
		return ApprovalResult{}, err
	}

	result.Ready = true
	result.Transaction = txBase64
	result.Authority = authority
	result.CoSigners = coSigners

	log.
		WithFields(log.Fields{"proposalId": id, "approvals": count}).
		Info("Proposal approved, partial transaction built")

	return result, nil
}

func (s *Service) Status(proposalID string) (ProposalStatus, error) {
	id, err := uuid.Parse(proposalID)
	if err != nil {
		return ProposalStatus{}, errors.InvalidInput("invalid proposal id")
	}

	proposal, err := s.store.Proposal(id)
	if err != nil {
		if err.Error() == "record not found" {
			return ProposalStatus{}, errors.NotFound("proposal not found")
		}
		return ProposalStatus{}, err
	}

	count, err := s.store.ApprovalCount(id)
	if err != nil {
		return ProposalStatus{}, err
	}

	signers, err := proposal.SignerList()
	if err != nil {
		return ProposalStatus{}, err
	}

	return ProposalStatus{
		Status:    proposal.Status,
		Approvals: count,
		Threshold: proposal.Threshold,
		Signers:   signers,
	}, nil
}

func (s *Service) List(limit, offset int) ([]Proposal, error) {
	o := datastore.ParseListOptions(limit, offset)
	return s.store.Proposals(o)
}

// buildPartialWithdraw assembles the multisig withdrawal signed only by
// the fee payer. The most recent approver initiates as authority; every
// other approver must co-sign out of band.
func (s *Service) buildPartialWithdraw(ctx context.Context, proposal *Proposal) (string, string, []string, error) {
	approvals, err := s.store.Approvals(proposal.ID)
	if err != nil {
		return "", "", nil, err
	}
	if len(approvals) == 0 {
		return "", "", nil, errors.Conflict("proposal has no approvals")
	}

	authority := approvals[len(approvals)-1].Signer
	authorityPk, err := solana_helpers.ValidateAddress(authority)
	if err != nil {
		return "", "", nil, err
	}
	ownerPk, err := solana_helpers.ValidateAddress(proposal.Owner)
	if err != nil {
		return "", "", nil, err
	}

	var coSigners []string
	var coSignerKeys []solana.PublicKey
	for _, a := range approvals {
		if a.Signer == authority {
			continue
		}
		pk, err := solana_helpers.ValidateAddress(a.Signer)
		if err != nil {
			return "", "", nil, err
		}
		coSigners = append(coSigners, a.Signer)
		coSignerKeys = append(coSignerKeys, pk)
	}

	ix, err := instructions.WithdrawMultisig(instructions.WithdrawMultisigParams{
		ProgramID:    s.programID,
		Owner:        ownerPk,
		Authority:    authorityPk,
		Amount:       uint64(proposal.Amount),
		OtherSigners: coSignerKeys,
	})
	if err != nil {
		return "", "", nil, err
	}

	all := append(instructions.ComputeBudget(multisigComputeUnits, multisigPriorityPrice), ix)

	blockhash, err := s.blockhash(ctx)
	if err != nil {
		return "", "", nil, err
	}

	tx, err := solana.NewTransaction(all, blockhash, solana.TransactionPayer(s.feePayer.PublicKey()))
	if err != nil {
		return "", "", nil, err
	}

	if _, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.feePayer.PublicKey()) {
			return &s.feePayer
		}
		return nil
	}); err != nil {
		return "", "", nil, err
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", "", nil, err
	}

	return base64.StdEncoding.EncodeToString(raw), authority, coSigners, nil
}

func (s *Service) chainConfig(ctx context.Context, owner string) (int, []string, error) {
	ownerPk, err := solana_helpers.ValidateAddress(owner)
	if err != nil {
		return 0, nil, err
	}

	vault, err := solana_helpers.FetchVault(ctx, s.client, ownerPk, s.programID)
	if err != nil {
		return 0, nil, errors.ChainGateway(err)
	}
	if vault.MultisigThreshold == 0 || len(vault.MultisigSigners) == 0 {
		return 0, nil, errors.InvalidInput("vault has no multisig configuration on chain")
	}

	signers := make([]string, 0, len(vault.MultisigSigners))
	for _, pk := range vault.MultisigSigners {
		signers = append(signers, pk.String())
	}

	return int(vault.MultisigThreshold), signers, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
