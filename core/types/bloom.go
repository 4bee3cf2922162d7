package types

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// bloom9 computes the three bit positions a piece of data sets in a
// bloom filter: the first six bytes of keccak256(data), split into three
// big-endian uint16s mod 2048.
func bloom9(data []byte) [3]uint {
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	h := d.Sum(nil)
	var bits [3]uint
	for i := 0; i < 3; i++ {
		bits[i] = uint(binary.BigEndian.Uint16(h[2*i:])) & 0x7FF
	}
	return bits
}

// BloomAdd sets the three bloom bits derived from data.
func BloomAdd(bloom *Bloom, data []byte) {
	for _, bit := range bloom9(data) {
		byteIdx := BloomByteLength - 1 - bit/8
		bloom[byteIdx] |= 1 << (bit % 8)
	}
}

// BloomContains reports whether all three bits for data are set.
func BloomContains(bloom Bloom, data []byte) bool {
	for _, bit := range bloom9(data) {
		byteIdx := BloomByteLength - 1 - bit/8
		if bloom[byteIdx]&(1<<(bit%8)) == 0 {
			return false
		}
	}
	return true
}

// LogsBloom computes the bloom filter covering a set of logs: each log's
// address and every topic is folded in.
func LogsBloom(logs []*Log) Bloom {
	var bloom Bloom
	for _, lg := range logs {
		BloomAdd(&bloom, lg.Address.Bytes())
		for _, topic := range lg.Topics {
			BloomAdd(&bloom, topic.Bytes())
		}
	}
	return bloom
}

// CreateBloom ORs together the per-receipt blooms of a block's receipts.
func CreateBloom(receipts []*Receipt) Bloom {
	var bloom Bloom
	for _, r := range receipts {
		for i := range r.Bloom {
			bloom[i] |= r.Bloom[i]
		}
	}
	return bloom
}

// Bytes returns the bloom filter's raw 256-byte representation.
func (b Bloom) Bytes() []byte { return b[:] }
