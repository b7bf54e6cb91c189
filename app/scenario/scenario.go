package scenario

import (
	"io"
	"os"

	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/domain/txtracker/utils/hashes"
	"github.com/kaspanet/txtracker/infrastructure/chaindata"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Scenario is a recorded chain: the blocks along with their contents, and
// the events announcing them, in the order they occurred
type Scenario struct {
	Blocks []*Block `yaml:"blocks"`
	Events []*Event `yaml:"events"`
}

// Block is a block of a scenario. An empty Parent marks a root.
type Block struct {
	Name         string         `yaml:"name"`
	Parent       string         `yaml:"parent"`
	Transactions []*Transaction `yaml:"transactions"`
}

// Transaction is a transaction of a scenario block, along with its verdict
// in that block. Valid defaults to true and Successful to Valid.
type Transaction struct {
	Value      string `yaml:"value"`
	Valid      *bool  `yaml:"valid"`
	Successful *bool  `yaml:"successful"`
}

// Event is a single chain event. Exactly one of its fields is set.
type Event struct {
	Transaction string `yaml:"transaction"`
	Block       string `yaml:"block"`
	Finalized   string `yaml:"finalized"`
}

// LoadFromFile loads and validates the scenario in the YAML file at path
func LoadFromFile(path string) (*Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open scenario file")
	}
	defer file.Close()

	scenario, err := Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load scenario file %s", path)
	}
	return scenario, nil
}

// Decode decodes and validates a YAML scenario
func Decode(reader io.Reader) (*Scenario, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var scenario Scenario
	err := decoder.Decode(&scenario)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode scenario")
	}
	err = scenario.Validate()
	if err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Validate checks that block names are unique and non-empty, that every
// event is well formed and that every announced block is defined
func (s *Scenario) Validate() error {
	blocks := make(map[string]struct{}, len(s.Blocks))
	for i, block := range s.Blocks {
		if block.Name == "" {
			return errors.Errorf("block #%d has no name", i)
		}
		if _, exists := blocks[block.Name]; exists {
			return errors.Errorf("block %s is defined more than once", block.Name)
		}
		blocks[block.Name] = struct{}{}

		for _, tx := range block.Transactions {
			if !tx.isValid() && tx.Successful != nil && *tx.Successful {
				return errors.Errorf("transaction %s cannot be both invalid and successful in block %s",
					tx.Value, block.Name)
			}
		}
	}

	for i, event := range s.Events {
		fieldsSet := 0
		for _, field := range []string{event.Transaction, event.Block, event.Finalized} {
			if field != "" {
				fieldsSet++
			}
		}
		if fieldsSet != 1 {
			return errors.Errorf("event #%d must set exactly one of transaction, block or finalized", i)
		}
		if event.Block != "" {
			if _, exists := blocks[event.Block]; !exists {
				return errors.Errorf("event #%d announces undefined block %s", i, event.Block)
			}
		}
	}
	return nil
}

func (tx *Transaction) isValid() bool {
	return tx.Valid == nil || *tx.Valid
}

func (tx *Transaction) isSuccessful() bool {
	if tx.Successful == nil {
		return tx.isValid()
	}
	return *tx.Successful
}

// Seed stores every block of the scenario in provider
func (s *Scenario) Seed(provider *chaindata.Provider) error {
	for _, block := range s.Blocks {
		transactions := make([]*chaindata.BlockTransaction, len(block.Transactions))
		for i, tx := range block.Transactions {
			transactions[i] = &chaindata.BlockTransaction{
				Transaction: externalapi.NewDomainTransaction([]byte(tx.Value)),
				Verdict: &chaindata.Verdict{
					Valid:      tx.isValid(),
					Successful: tx.isValid() && tx.isSuccessful(),
				},
			}
		}
		err := provider.StoreBlock(hashes.BlockHashFromName(block.Name), transactions)
		if err != nil {
			return err
		}
	}
	log.Debugf("Seeded %d blocks", len(s.Blocks))
	return nil
}

// ChainEvents converts the scenario's events to chain events
func (s *Scenario) ChainEvents() []externalapi.ChainEvent {
	parents := make(map[string]string, len(s.Blocks))
	for _, block := range s.Blocks {
		parents[block.Name] = block.Parent
	}

	chainEvents := make([]externalapi.ChainEvent, 0, len(s.Events))
	for _, event := range s.Events {
		switch {
		case event.Transaction != "":
			chainEvents = append(chainEvents, &externalapi.NewTransactionEvent{
				Transaction: externalapi.NewDomainTransaction([]byte(event.Transaction)),
			})
		case event.Block != "":
			newBlockEvent := &externalapi.NewBlockEvent{Hash: hashes.BlockHashFromName(event.Block)}
			if parent := parents[event.Block]; parent != "" {
				newBlockEvent.ParentHash = hashes.BlockHashFromName(parent)
			}
			chainEvents = append(chainEvents, newBlockEvent)
		case event.Finalized != "":
			chainEvents = append(chainEvents, &externalapi.FinalizedEvent{
				Hash: hashes.BlockHashFromName(event.Finalized),
			})
		}
	}
	return chainEvents
}

// BlockNames maps the hash of every scenario block to its name
func (s *Scenario) BlockNames() map[externalapi.DomainHash]string {
	names := make(map[externalapi.DomainHash]string, len(s.Blocks))
	for _, block := range s.Blocks {
		names[*hashes.BlockHashFromName(block.Name)] = block.Name
	}
	return names
}
