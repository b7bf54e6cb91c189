package externalapi

import "fmt"

// SettlementType classifies a transaction's inclusion in a block
type SettlementType uint8

const (
	// SettlementTypeInvalid means the block contains the transaction but it failed validation there
	SettlementTypeInvalid SettlementType = iota

	// SettlementTypeValid means the transaction was validly included; see SettlementStatus.Successful
	SettlementTypeValid
)

var settlementTypeStrings = map[SettlementType]string{
	SettlementTypeInvalid: "invalid",
	SettlementTypeValid:   "valid",
}

func (st SettlementType) String() string {
	if str, ok := settlementTypeStrings[st]; ok {
		return str
	}
	return fmt.Sprintf("unknown(%d)", uint8(st))
}

// SettlementStatus describes the inclusion of a transaction in a specific block.
// Successful is meaningful only when Type is SettlementTypeValid.
type SettlementStatus struct {
	BlockHash  *DomainHash
	Type       SettlementType
	Successful bool
}

// Equal returns whether status equals to other
func (status *SettlementStatus) Equal(other *SettlementStatus) bool {
	if status == nil || other == nil {
		return status == other
	}
	return status.BlockHash.Equal(other.BlockHash) &&
		status.Type == other.Type &&
		status.Successful == other.Successful
}

func (status *SettlementStatus) String() string {
	if status.Type != SettlementTypeValid {
		return fmt.Sprintf("%s in %s", status.Type, status.BlockHash)
	}
	return fmt.Sprintf("%s (successful: %t) in %s", status.Type, status.Successful, status.BlockHash)
}
