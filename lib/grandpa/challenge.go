// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/tidwall/btree"
	"golang.org/x/exp/slices"

	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
	finality "github.com/ChainSafe/grandpa-accountability/pkg/finality-grandpa"
)

// ReportRejectingPrecommits disputes the finalization of a block with a set
// of precommits which do not support it.
//
// If the precommits are from the round of the finality proof, the authorities
// which precommitted twice in that round are reported. If they are from a
// later round, a challenge session is opened which the accused authorities
// can answer with the prevotes supporting the block.
func (m *Module) ReportRejectingPrecommits(s state.Storage, origin Origin,
	challenge types.PrecommitChallenge) error {
	_, err := origin.ensureSigned()
	if err != nil {
		return err
	}
	return reportRejectingSet(m, s, challenge)
}

// ReportRejectingPrevotes disputes the finalization of a block with a set of
// prevotes which do not support it.
func (m *Module) ReportRejectingPrevotes(s state.Storage, origin Origin,
	challenge types.PrevoteChallenge) error {
	_, err := origin.ensureSigned()
	if err != nil {
		return err
	}
	return reportRejectingSet(m, s, challenge)
}

func reportRejectingSet[V types.Vote](m *Module, s state.Storage, challenge types.Challenge[V]) error {
	proof := challenge.FinalizedBlockProof
	rejecting := challenge.RejectingSet

	voters, err := m.checkFinalityProof(s, challenge.FinalizedBlock, proof)
	if err != nil {
		return err
	}

	rejectingVoters, err := checkRejectingSet(m, s, challenge.FinalizedBlock, rejecting)
	if err != nil {
		return err
	}

	challengeID, err := challenge.Hash()
	if err != nil {
		return fmt.Errorf("hashing challenge: %w", err)
	}

	switch {
	case rejecting.SetID == proof.SetID && rejecting.Round == proof.Round:
		return resolveSameRound(m, s, challengeID, challenge, voters)
	case rejecting.SetID > proof.SetID ||
		(rejecting.SetID == proof.SetID && rejecting.Round > proof.Round):
		err = checkRejectingWeight(rejecting, rejectingVoters)
		if err != nil {
			return err
		}
		return openSession(m, s, challengeID, challenge, voters)
	default:
		return fmt.Errorf("%w: rejecting round %d of set %d is before finality round %d of set %d",
			ErrInvalidFinalityProof, rejecting.Round, rejecting.SetID, proof.Round, proof.SetID)
	}
}

// checkFinalityProof checks the commit of the proof is signed and finalizes
// the block given. It returns the voter set of the proof.
func (m *Module) checkFinalityProof(s state.Storage, block types.BlockID,
	proof types.FinalizedBlockProof) (*types.VoterSet, error) {
	if proof.Commit.Target() != block {
		return nil, fmt.Errorf("%w: commit target %s (%d) is not the finalized block",
			ErrInvalidFinalityProof, proof.Commit.TargetHash, proof.Commit.TargetNumber)
	}

	voters, err := m.setVoters(s, proof.SetID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFinalityProof, err)
	}

	for _, precommit := range proof.Commit.Precommits {
		err = CheckVoteSignature(precommit.ID, precommit.Precommit, precommit.Signature,
			proof.Round, proof.SetID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFinalityProof, err)
		}
	}

	ghost, err := m.validateCommit(proof.Headers, proof.Commit, voters)
	if err != nil {
		return nil, err
	}

	if ghost == nil || *ghost != block {
		return nil, fmt.Errorf("%w: commit ghost is %s", ErrInvalidFinalityProof, describeGhost(ghost))
	}

	return voters, nil
}

// checkRejectingSet checks the rejecting set holds votes of the authorities
// of its set which do not support the finalized block. It returns the voter
// set of the rejecting set.
func checkRejectingSet[V types.Vote](m *Module, s state.Storage, block types.BlockID,
	rejecting types.RejectingVoteSet[V]) (*types.VoterSet, error) {
	if len(rejecting.Votes) == 0 {
		return nil, fmt.Errorf("%w: rejecting set has no votes", ErrChallengeDoesNotRefute)
	}

	voters, err := m.setVoters(s, rejecting.SetID)
	if err != nil {
		return nil, err
	}

	err = checkVotes(voters, rejecting)
	if err != nil {
		return nil, err
	}

	ghost, err := m.validateCommit(rejecting.Headers, rejecting.Commit(block), voters)
	if err != nil {
		return nil, err
	}

	if supports(rejecting.Headers, ghost, block) {
		return nil, fmt.Errorf("%w: rejecting %s ghost %s supports block %s (%d)",
			ErrChallengeDoesNotRefute, types.StageOf[V](), describeGhost(ghost), block.Hash, block.Number)
	}

	return voters, nil
}

// checkVotes checks every vote of the set is cast by a voter and signed for
// the round and set id of the set.
func checkVotes[V types.Vote](voters *types.VoterSet, set types.RejectingVoteSet[V]) error {
	for _, vote := range set.Votes {
		if !voters.Contains(vote.Authority) {
			return fmt.Errorf("%w: %s in set %d", ErrNotAuthority, vote.Authority, set.SetID)
		}
		err := CheckVoteSignature(vote.Authority, vote.Vote, vote.Signature, set.Round, set.SetID)
		if err != nil {
			return err
		}
	}
	return nil
}

// checkRejectingWeight checks the distinct voters of the rejecting set reach
// the supermajority threshold of their set.
func checkRejectingWeight[V types.Vote](rejecting types.RejectingVoteSet[V], voters *types.VoterSet) error {
	seen := make(map[types.AuthorityID]struct{}, len(rejecting.Votes))
	var weight finality.VoterWeight
	for _, vote := range rejecting.Votes {
		if _, ok := seen[vote.Authority]; ok {
			continue
		}
		seen[vote.Authority] = struct{}{}
		err := weight.CheckedAdd(voters.Get(vote.Authority).Weight())
		if err != nil {
			return err
		}
	}

	if weight < voters.Threshold() {
		return fmt.Errorf("%w: rejecting votes weigh %d, below threshold %d",
			ErrChallengeDoesNotRefute, weight, voters.Threshold())
	}
	return nil
}

// resolveSameRound reports the authorities which voted twice in the round
// of the finality proof.
func resolveSameRound[V types.Vote](m *Module, s state.Storage, challengeID common.Hash,
	challenge types.Challenge[V], voters *types.VoterSet) error {
	proof := challenge.FinalizedBlockProof

	var votes []castVote
	if types.StageOf[V]() == types.PrecommitStage {
		for _, precommit := range proof.Commit.Precommits {
			votes = append(votes, castVote{
				authority: precommit.ID,
				target:    types.VoteTarget(precommit.Precommit),
			})
		}
	}
	for _, vote := range challenge.RejectingSet.Votes {
		votes = append(votes, castVote{
			authority: vote.Authority,
			target:    types.VoteTarget(vote.Vote),
		})
	}

	equivocators := findEquivocators(votes, voters)
	if len(equivocators) == 0 {
		return fmt.Errorf("%w: no %s equivocation in round %d of set %d",
			ErrChallengeDoesNotRefute, types.StageOf[V](), proof.Round, proof.SetID)
	}

	culprits, err := m.offences.report(s, ChallengeEquivocation, proof.SetID, proof.Round, equivocators)
	if err != nil {
		return err
	}

	challengesTotal.WithLabelValues("resolved").Inc()
	logger.Infof("challenge %s resolved with %d equivocators in round %d of set %d",
		challengeID, len(equivocators), proof.Round, proof.SetID)

	return depositEvent(s, ChallengeResolvedEvent{
		ChallengeID: challengeID,
		Culprits:    culprits,
	})
}

// openSession opens a challenge session which the signers of the finality
// proof can answer until it expires.
func openSession[V types.Vote](m *Module, s state.Storage, challengeID common.Hash,
	challenge types.Challenge[V], voters *types.VoterSet) error {
	sessions, err := challengeSessions.Get(s)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		block, round := session.Disputes()
		if block == challenge.FinalizedBlock && round == challenge.RejectingSet.Round {
			return fmt.Errorf("%w: session %s disputes block %s in round %d",
				ErrDuplicateChallenge, session.ID, block.Hash, round)
		}
	}

	number, err := state.BlockNumber(s)
	if err != nil {
		return fmt.Errorf("getting current block number: %w", err)
	}
	parentHash, err := state.ParentHash(s)
	if err != nil {
		return fmt.Errorf("getting parent hash: %w", err)
	}

	session := StoredChallengeSession{
		ID:          challengeID,
		ScheduledAt: number,
		Delay:       m.cfg.ChallengeSessionLength,
		ParentHash:  parentHash,
		SetID:       challenge.FinalizedBlockProof.SetID,
		Accused:     commitSigners(challenge.FinalizedBlockProof.Commit, voters),
	}
	switch c := any(challenge).(type) {
	case types.PrevoteChallenge:
		session.PrevoteChallenge = &c
	case types.PrecommitChallenge:
		session.PrecommitChallenge = &c
	}

	err = state.Append(s, challengeSessions, session)
	if err != nil {
		return err
	}
	err = state.Append(s, pendingChallenges, session)
	if err != nil {
		return err
	}

	challengesTotal.WithLabelValues("opened").Inc()
	logger.Infof("opened challenge session %s disputing block %s (%d), expiring at block %d",
		challengeID, challenge.FinalizedBlock.Hash, challenge.FinalizedBlock.Number, session.ExpiresAt())

	return depositEvent(s, NewChallengeEvent{
		ChallengeID:    challengeID,
		FinalizedBlock: challenge.FinalizedBlock,
		Round:          challenge.RejectingSet.Round,
		Accused:        session.Accused,
	})
}

// ReportPrevotesAnswer answers a challenge session with the prevotes of the
// round of the disputed finality proof. The prevotes must support the
// disputed block, in which case the session is closed. An answer which does
// not support the block is rejected and the session stays open until it is
// answered or expires.
func (m *Module) ReportPrevotesAnswer(s state.Storage, origin Origin, answer types.PrevoteChallenge) error {
	_, err := origin.ensureSigned()
	if err != nil {
		return err
	}

	sessions, err := challengeSessions.Get(s)
	if err != nil {
		return err
	}

	index := slices.IndexFunc(sessions, func(session StoredChallengeSession) bool {
		block, _ := session.Disputes()
		proofSetID, proofRound := session.proofRound()
		return block == answer.FinalizedBlock &&
			proofSetID == answer.RejectingSet.SetID &&
			proofRound == answer.RejectingSet.Round
	})
	if index < 0 {
		return fmt.Errorf("%w: disputing block %s in round %d of set %d",
			ErrNoSuchChallenge, answer.FinalizedBlock.Hash, answer.RejectingSet.Round, answer.RejectingSet.SetID)
	}
	session := sessions[index]

	prevotes := answer.RejectingSet
	voters, err := m.setVoters(s, prevotes.SetID)
	if err != nil {
		return err
	}

	err = checkVotes(voters, prevotes)
	if err != nil {
		return err
	}

	ghost, err := m.validateCommit(prevotes.Headers, prevotes.Commit(answer.FinalizedBlock), voters)
	if err != nil {
		return err
	}

	if !supports(prevotes.Headers, ghost, answer.FinalizedBlock) {
		return fmt.Errorf("%w: answer prevote ghost %s does not support block %s (%d)",
			ErrInvalidFinalityProof, describeGhost(ghost), answer.FinalizedBlock.Hash, answer.FinalizedBlock.Number)
	}

	sessions = slices.Delete(sessions, index, index+1)
	err = putSessions(s, sessions)
	if err != nil {
		return err
	}

	challengesTotal.WithLabelValues("responded").Inc()
	logger.Infof("challenge session %s answered", session.ID)
	return depositEvent(s, ChallengeRespondedEvent{
		ChallengeID: session.ID,
		Accused:     session.Accused,
	})
}

// finalizeChallenges signals the oldest challenge session not yet signalled,
// unless the block already carries a signal, and expires the sessions whose
// answer window elapsed.
func (m *Module) finalizeChallenges(s state.Storage, number uint32) error {
	err := signalPendingChallenge(s)
	if err != nil {
		return err
	}

	sessions, err := challengeSessions.Get(s)
	if err != nil {
		return err
	}

	remaining := sessions[:0]
	for _, session := range sessions {
		if number < session.ExpiresAt() {
			remaining = append(remaining, session)
			continue
		}

		setID, round := session.proofRound()
		culprits, err := m.offences.report(s, UnansweredChallenge, setID, round, session.Accused)
		if err != nil {
			return err
		}

		challengesTotal.WithLabelValues("expired").Inc()
		logger.Infof("challenge session %s expired at block %d, reported %d authorities",
			session.ID, number, len(culprits))

		err = depositEvent(s, ChallengeExpiredEvent{
			ChallengeID: session.ID,
			Culprits:    culprits,
		})
		if err != nil {
			return err
		}
	}

	if len(remaining) == len(sessions) {
		return nil
	}
	return putSessions(s, remaining)
}

// signalPendingChallenge deposits the signal of the first queued session.
// A digest carries a single GRANDPA signal, so one session is signalled
// per block.
func signalPendingChallenge(s state.Storage) error {
	queue, err := pendingChallenges.Get(s)
	if err != nil || len(queue) == 0 {
		return err
	}
	session := queue[0]

	digest, err := state.BlockDigest(s)
	if err != nil {
		return err
	}
	if digest.ConsensusLog(types.GrandpaEngineID) != nil {
		logger.Debugf("block already carries a signal, deferring signal of %d challenge sessions", len(queue))
		return nil
	}

	switch {
	case session.PrecommitChallenge != nil:
		err = depositSignal(s, types.PrecommitChallengeSignal{Challenge: *session.PrecommitChallenge})
	case session.PrevoteChallenge != nil:
		err = depositSignal(s, types.PrevoteChallengeSignal{Challenge: *session.PrevoteChallenge})
	}
	if err != nil {
		return fmt.Errorf("depositing challenge signal: %w", err)
	}

	if len(queue) == 1 {
		return pendingChallenges.Kill(s)
	}
	return pendingChallenges.Put(s, queue[1:])
}

func putSessions(s state.Storage, sessions []StoredChallengeSession) error {
	if len(sessions) == 0 {
		return challengeSessions.Kill(s)
	}
	return challengeSessions.Put(s, sessions)
}

// setVoters returns the voter set of the authority set id given.
func (*Module) setVoters(s state.Storage, setID uint64) (*types.VoterSet, error) {
	list, err := SetAuthorities(s, setID)
	if err != nil {
		return nil, err
	}
	return voterSet(list)
}

type castVote struct {
	authority types.AuthorityID
	target    types.BlockID
}

// findEquivocators returns the voters casting votes for different blocks,
// in ascending order.
func findEquivocators(votes []castVote, voters *types.VoterSet) []types.AuthorityID {
	first := make(map[types.AuthorityID]types.BlockID, len(votes))
	equivocators := btree.NewBTreeG(func(a, b types.AuthorityID) bool {
		return a.Compare(b) < 0
	})

	for _, vote := range votes {
		if !voters.Contains(vote.authority) {
			continue
		}
		target, voted := first[vote.authority]
		if !voted {
			first[vote.authority] = vote.target
			continue
		}
		if target != vote.target {
			equivocators.Set(vote.authority)
		}
	}

	ids := make([]types.AuthorityID, 0, equivocators.Len())
	equivocators.Scan(func(id types.AuthorityID) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// commitSigners returns the voters signing the commit, in ascending order.
func commitSigners(commit types.Commit, voters *types.VoterSet) []types.AuthorityID {
	var signers []types.AuthorityID
	for _, precommit := range commit.Precommits {
		if voters.Contains(precommit.ID) {
			signers = append(signers, precommit.ID)
		}
	}

	slices.SortFunc(signers, func(a, b types.AuthorityID) int {
		return a.Compare(b)
	})
	return slices.Compact(signers)
}

// proofRound returns the authority set id and round of the disputed finality proof.
func (s StoredChallengeSession) proofRound() (setID, round uint64) {
	switch {
	case s.PrecommitChallenge != nil:
		proof := s.PrecommitChallenge.FinalizedBlockProof
		return proof.SetID, proof.Round
	case s.PrevoteChallenge != nil:
		proof := s.PrevoteChallenge.FinalizedBlockProof
		return proof.SetID, proof.Round
	default:
		return s.SetID, 0
	}
}

// supports returns true if the ghost is the block or one of its descendants.
func supports(headers []types.Header, ghost *types.BlockID, block types.BlockID) bool {
	if ghost == nil {
		return false
	}
	if *ghost == block {
		return true
	}
	return ghost.Number > block.Number &&
		NewAncestryChain(headers).IsEqualOrDescendantOf(block.Hash, ghost.Hash)
}

func describeGhost(ghost *types.BlockID) string {
	if ghost == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%d)", ghost.Hash, ghost.Number)
}
