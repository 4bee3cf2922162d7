package core

import (
	"encoding/binary"
	"testing"

	"github.com/evmforge/evmcore/core/state"
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm/num"
)

func depositEventLogData(pubkey [48]byte, wc [32]byte, amountGwei uint64, sig [96]byte, index uint64) []byte {
	var amt, idx [8]byte
	binary.LittleEndian.PutUint64(amt[:], amountGwei)
	binary.LittleEndian.PutUint64(idx[:], index)

	fields := [][]byte{pubkey[:], wc[:], amt[:], sig[:], idx[:]}
	var head, tail []byte
	headWords := len(fields)
	offset := headWords * 32
	for _, f := range fields {
		var offWord [32]byte
		binary.BigEndian.PutUint64(offWord[24:], uint64(offset))
		head = append(head, offWord[:]...)

		var lenWord [32]byte
		binary.BigEndian.PutUint64(lenWord[24:], uint64(len(f)))
		padded := make([]byte, (len(f)+31)/32*32)
		copy(padded, f)
		tail = append(tail, lenWord[:]...)
		tail = append(tail, padded...)
		offset += 32 + len(padded)
	}
	return append(head, tail...)
}

func TestDecodeDepositEventRoundTrip(t *testing.T) {
	var pubkey [48]byte
	var wc [32]byte
	var sig [96]byte
	for i := range pubkey {
		pubkey[i] = byte(i)
	}
	for i := range wc {
		wc[i] = byte(i + 1)
	}
	for i := range sig {
		sig[i] = byte(i + 2)
	}

	data := depositEventLogData(pubkey, wc, 32_000_000_000, sig, 7)
	dep, ok := decodeDepositEvent(data)
	if !ok {
		t.Fatalf("decodeDepositEvent failed on well-formed data")
	}
	if dep.Pubkey != pubkey {
		t.Errorf("pubkey mismatch")
	}
	if dep.WithdrawalCredentials != wc {
		t.Errorf("withdrawal credentials mismatch")
	}
	if dep.Amount != 32_000_000_000 {
		t.Errorf("amount: got %d, want 32000000000", dep.Amount)
	}
	if dep.Signature != sig {
		t.Errorf("signature mismatch")
	}
	if dep.Index != 7 {
		t.Errorf("index: got %d, want 7", dep.Index)
	}
}

func TestDecodeDepositEventRejectsShortData(t *testing.T) {
	if _, ok := decodeDepositEvent(make([]byte, 10)); ok {
		t.Fatalf("expected decode failure on truncated data")
	}
}

func TestParseDepositRequestsFiltersNonDepositLogs(t *testing.T) {
	var pubkey [48]byte
	var wc [32]byte
	var sig [96]byte
	data := depositEventLogData(pubkey, wc, 1_000_000_000, sig, 0)

	matching := &types.Log{
		Address: DepositContractAddress,
		Topics:  []types.Hash{DepositEventSignature},
		Data:    data,
	}
	wrongAddress := &types.Log{
		Address: types.Address{0xff},
		Topics:  []types.Hash{DepositEventSignature},
		Data:    data,
	}
	wrongTopic := &types.Log{
		Address: DepositContractAddress,
		Topics:  []types.Hash{{0x01}},
		Data:    data,
	}

	receipts := []*types.Receipt{
		{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{matching, wrongAddress, wrongTopic}},
		{Status: types.ReceiptStatusFailed, Logs: []*types.Log{matching}},
	}

	deposits := ParseDepositRequests(receipts)
	if len(deposits) != 1 {
		t.Fatalf("expected exactly 1 deposit, got %d", len(deposits))
	}
}

func setQueueHeader(st *state.State, addr types.Address, excess, count, head, tail uint64) {
	st.SetStorage(addr, uint64ToHash(queueExcessSlot), num.FromUint64(excess))
	st.SetStorage(addr, uint64ToHash(queueCountSlot), num.FromUint64(count))
	st.SetStorage(addr, uint64ToHash(queueHeadSlot), num.FromUint64(head))
	st.SetStorage(addr, uint64ToHash(queueTailSlot), num.FromUint64(tail))
}

func TestProcessWithdrawalRequestsDrainsQueue(t *testing.T) {
	st := state.New()
	setQueueHeader(st, WithdrawalRequestContract, 0, 1, 0, 1)

	source := types.Address{0xaa}
	var s0 [32]byte
	copy(s0[12:32], source[:])
	var s1 [32]byte
	for i := range s1 {
		s1[i] = byte(i)
	}
	var s2 [32]byte
	s2[0] = 0xff // last 16 bytes of pubkey
	binary.LittleEndian.PutUint64(s2[16:24], 5_000_000_000)

	base := uint64(queueDataOffset)
	st.SetStorage(WithdrawalRequestContract, uint64ToHash(base), num.FromBEBytes32(s0[:]))
	st.SetStorage(WithdrawalRequestContract, uint64ToHash(base+1), num.FromBEBytes32(s1[:]))
	st.SetStorage(WithdrawalRequestContract, uint64ToHash(base+2), num.FromBEBytes32(s2[:]))

	reqs := ProcessWithdrawalRequests(st)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 withdrawal request, got %d", len(reqs))
	}
	if reqs[0].SourceAddress != source {
		t.Errorf("source address mismatch: got %x, want %x", reqs[0].SourceAddress, source)
	}
	if reqs[0].Amount != 5_000_000_000 {
		t.Errorf("amount: got %d, want 5000000000", reqs[0].Amount)
	}

	head := st.GetStorage(WithdrawalRequestContract, uint64ToHash(queueHeadSlot))
	if head.Uint64() != 0 {
		t.Errorf("head/tail should both reset to 0 once the queue is drained, got head=%d", head.Uint64())
	}
}

func TestProcessWithdrawalRequestsCapsAtMaxPerBlock(t *testing.T) {
	st := state.New()
	setQueueHeader(st, WithdrawalRequestContract, 0, 0, 0, maxWithdrawalRequestsPerBlock+10)

	reqs := ProcessWithdrawalRequests(st)
	if len(reqs) != maxWithdrawalRequestsPerBlock {
		t.Fatalf("expected %d requests (capped), got %d", maxWithdrawalRequestsPerBlock, len(reqs))
	}

	head := st.GetStorage(WithdrawalRequestContract, uint64ToHash(queueHeadSlot))
	if head.Uint64() != maxWithdrawalRequestsPerBlock {
		t.Errorf("head should advance by exactly maxWithdrawalRequestsPerBlock, got %d", head.Uint64())
	}
}

func TestProcessWithdrawalRequestsEmptyQueue(t *testing.T) {
	st := state.New()
	reqs := ProcessWithdrawalRequests(st)
	if len(reqs) != 0 {
		t.Fatalf("expected no requests from an empty queue, got %d", len(reqs))
	}
}

func TestProcessConsolidationRequestsDrainsQueue(t *testing.T) {
	st := state.New()
	setQueueHeader(st, ConsolidationRequestContract, 0, 1, 0, 1)

	source := types.Address{0xbb}
	var s0 [32]byte
	copy(s0[12:32], source[:])
	var s1, s2 [32]byte
	s1[0] = 0x01
	s2[0] = 0x02

	base := uint64(queueDataOffset)
	st.SetStorage(ConsolidationRequestContract, uint64ToHash(base), num.FromBEBytes32(s0[:]))
	st.SetStorage(ConsolidationRequestContract, uint64ToHash(base+1), num.FromBEBytes32(s1[:]))
	st.SetStorage(ConsolidationRequestContract, uint64ToHash(base+2), num.FromBEBytes32(s2[:]))

	reqs := ProcessConsolidationRequests(st)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 consolidation request, got %d", len(reqs))
	}
	if reqs[0].SourceAddress != source {
		t.Errorf("source address mismatch")
	}
}

func TestEncodeRequestsRoundTripLength(t *testing.T) {
	deposits := []types.DepositRequest{{Amount: 1}, {Amount: 2}}
	encoded := encodeDepositRequests(deposits)
	wantLen := len(deposits) * (48 + 32 + 8 + 96 + 8)
	if len(encoded) != wantLen {
		t.Fatalf("encodeDepositRequests length: got %d, want %d", len(encoded), wantLen)
	}

	withdrawals := []types.WithdrawalRequest{{Amount: 1}}
	encodedW := encodeWithdrawalRequests(withdrawals)
	if len(encodedW) != 20+48+8 {
		t.Fatalf("encodeWithdrawalRequests length: got %d, want %d", len(encodedW), 20+48+8)
	}

	consolidations := []types.ConsolidationRequest{{}}
	encodedC := encodeConsolidationRequests(consolidations)
	if len(encodedC) != 20+48+48 {
		t.Fatalf("encodeConsolidationRequests length: got %d, want %d", len(encodedC), 20+48+48)
	}
}
