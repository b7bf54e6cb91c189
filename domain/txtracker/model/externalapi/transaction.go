package externalapi

import (
	"bytes"
	"encoding/hex"
)

// DomainTransaction is a transaction submitted to the ledger, identified by
// its content.
type DomainTransaction struct {
	Value []byte

	// ID is a cache of the transaction ID. Use hashes.TransactionID to read it.
	ID *DomainTransactionID
}

// NewDomainTransaction wraps the given content. The content is cloned.
func NewDomainTransaction(value []byte) *DomainTransaction {
	valueClone := make([]byte, len(value))
	copy(valueClone, value)
	return &DomainTransaction{Value: valueClone}
}

// Equal returns whether tx has the same content as other
func (tx *DomainTransaction) Equal(other *DomainTransaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}
	return bytes.Equal(tx.Value, other.Value)
}

// String returns a short printable form of the transaction content.
func (tx *DomainTransaction) String() string {
	const maxPrintableLength = 16
	if isPrintable(tx.Value) {
		if len(tx.Value) > maxPrintableLength {
			return string(tx.Value[:maxPrintableLength]) + "..."
		}
		return string(tx.Value)
	}
	if len(tx.Value) > maxPrintableLength {
		return hex.EncodeToString(tx.Value[:maxPrintableLength]) + "..."
	}
	return hex.EncodeToString(tx.Value)
}

func isPrintable(value []byte) bool {
	for _, b := range value {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return len(value) > 0
}

// DomainTransactionID represents the ID of a DomainTransaction: the hash of
// its content.
type DomainTransactionID DomainHash

// String stringifies a transaction ID.
func (id DomainTransactionID) String() string {
	return DomainHash(id).String()
}

// Equal returns whether id equals to other
func (id *DomainTransactionID) Equal(other *DomainTransactionID) bool {
	return (*DomainHash)(id).Equal((*DomainHash)(other))
}
