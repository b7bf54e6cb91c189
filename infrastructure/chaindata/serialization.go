package chaindata

import (
	"bytes"

	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/util/binaryserializer"
	"github.com/pkg/errors"
)

// maxTransactionSize bounds a single serialized transaction
const maxTransactionSize = 1 << 20

func serializeBody(body []*externalapi.DomainTransaction) ([]byte, error) {
	buffer := &bytes.Buffer{}
	err := binaryserializer.PutUint32(buffer, uint32(len(body)))
	if err != nil {
		return nil, err
	}
	for _, tx := range body {
		err := binaryserializer.PutBytes(buffer, tx.Value)
		if err != nil {
			return nil, err
		}
	}
	return buffer.Bytes(), nil
}

func deserializeBody(serialized []byte) ([]*externalapi.DomainTransaction, error) {
	reader := bytes.NewReader(serialized)
	count, err := binaryserializer.Uint32(reader)
	if err != nil {
		return nil, err
	}
	if uint64(count) > uint64(len(serialized)) {
		return nil, errors.Errorf("body claims %d transactions in %d bytes", count, len(serialized))
	}

	body := make([]*externalapi.DomainTransaction, count)
	for i := range body {
		value, err := binaryserializer.Bytes(reader, maxTransactionSize)
		if err != nil {
			return nil, err
		}
		body[i] = &externalapi.DomainTransaction{Value: value}
	}
	if reader.Len() != 0 {
		return nil, errors.Errorf("%d unexpected trailing bytes after body", reader.Len())
	}
	return body, nil
}

const (
	verdictValid      = 1 << 0
	verdictSuccessful = 1 << 1
)

func serializeVerdict(verdict *Verdict) []byte {
	var flags byte
	if verdict.Valid {
		flags |= verdictValid
	}
	if verdict.Successful {
		flags |= verdictSuccessful
	}
	return []byte{flags}
}

func deserializeVerdict(serialized []byte) (*Verdict, error) {
	if len(serialized) != 1 {
		return nil, errors.Errorf("invalid verdict length %d", len(serialized))
	}
	return &Verdict{
		Valid:      serialized[0]&verdictValid != 0,
		Successful: serialized[0]&verdictSuccessful != 0,
	}, nil
}
