package core

// types.go – centralised data-model declarations for the ledger core.
// Mirrors the teacher's common_structs.go convention of keeping struct
// declarations together, trimmed to exactly the entities spec.md §3
// names.

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

// Hash is a 32 byte digest produced by a HashProvider.
type Hash [32]byte

func (h Hash) Hex() string    { return hex.EncodeToString(h[:]) }
func (h Hash) IsZero() bool   { return h == Hash{} }
func (h Hash) String() string { return h.Hex() }

// PublicKey is an Ed25519 public key, 32 bytes per spec.md §3.
type PublicKey [32]byte

func (p PublicKey) Hex() string    { return hex.EncodeToString(p[:]) }
func (p PublicKey) String() string { return p.Hex() }

// AccountID is "<name>@<domain>".
type AccountID string

func NewAccountID(name, domain string) AccountID {
	return AccountID(fmt.Sprintf("%s@%s", name, domain))
}

// AssetID is "<asset>#<domain>".
type AssetID string

func NewAssetID(name, domain string) AssetID {
	return AssetID(fmt.Sprintf("%s#%s", name, domain))
}

// Domain is created once and persists; identified by its name.
type Domain struct {
	Name string
}

// Asset carries a precision (decimal digits after the point, <= 255).
type Asset struct {
	ID        AssetID
	Name      string
	Domain    string
	Precision uint8
}

// Account is identified by AccountID, holds a quorum and an ordered,
// duplicate-free set of signatory public keys.
type Account struct {
	ID          AccountID
	Name        string
	Domain      string
	Quorum      uint32
	Signatories []PublicKey // insertion order preserved
}

func (a *Account) hasSignatory(pub PublicKey) bool {
	for _, s := range a.Signatories {
		if s == pub {
			return true
		}
	}
	return false
}

// clone returns a deep copy so staged mutations never alias committed state.
func (a *Account) clone() *Account {
	cp := *a
	cp.Signatories = append([]PublicKey(nil), a.Signatories...)
	return &cp
}

// Peer is a (public key, network address) pair; peers form a set keyed
// on the public key.
type Peer struct {
	PubKey  PublicKey
	Address string
}

// Amount is a fixed-point non-negative integer. Precision matches its
// asset; arithmetic is exact (big.Int, never a binary float).
type Amount struct {
	Value     *big.Int
	Precision uint8
}

func NewAmount(value int64, precision uint8) Amount {
	return Amount{Value: big.NewInt(value), Precision: precision}
}

func (a Amount) IsZero() bool { return a.Value == nil || a.Value.Sign() == 0 }
func (a Amount) Sign() int {
	if a.Value == nil {
		return 0
	}
	return a.Value.Sign()
}

func (a Amount) clone() Amount {
	if a.Value == nil {
		return Amount{Value: big.NewInt(0), Precision: a.Precision}
	}
	return Amount{Value: new(big.Int).Set(a.Value), Precision: a.Precision}
}

// add returns a+b; both operands must share precision.
func (a Amount) add(b Amount) Amount {
	if a.Value == nil {
		return b.clone()
	}
	return Amount{Value: new(big.Int).Add(a.Value, b.Value), Precision: a.Precision}
}

// sub returns a-b; both operands must share precision.
func (a Amount) sub(b Amount) Amount {
	return Amount{Value: new(big.Int).Sub(a.Value, b.Value), Precision: a.Precision}
}

func (a Amount) lessThan(b Amount) bool { return a.Value.Cmp(b.Value) < 0 }

// --- Commands (spec.md §4.5) -------------------------------------------------

// Command is a closed, tagged variant executed sequentially inside a
// transaction. Re-expressed from the teacher's dynamic-dispatch style
// as an exhaustive type switch in executor.go (spec.md §9 Design Notes).
type Command interface{ isCommand() }

type CreateDomain struct{ Name string }
type CreateAccount struct {
	Name, Domain string
	PublicKey    PublicKey // zero value means "no initial signatory"
}
type CreateAsset struct {
	Name, Domain string
	Precision    uint8
}
type AddAssetQuantity struct {
	AccountID AccountID
	AssetID   AssetID
	Amount    Amount
}
type TransferAsset struct {
	Src, Dest   AccountID
	AssetID     AssetID
	Amount      Amount
	Description string
}
type AddSignatory struct {
	AccountID AccountID
	PublicKey PublicKey
}
type RemoveSignatory struct {
	AccountID AccountID
	PublicKey PublicKey
}
type SetQuorum struct {
	AccountID AccountID
	Quorum    uint32
}
type AddPeer struct {
	PublicKey PublicKey
	Address   string
}

func (CreateDomain) isCommand()     {}
func (CreateAccount) isCommand()    {}
func (CreateAsset) isCommand()      {}
func (AddAssetQuantity) isCommand() {}
func (TransferAsset) isCommand()    {}
func (AddSignatory) isCommand()     {}
func (RemoveSignatory) isCommand()  {}
func (SetQuorum) isCommand()        {}
func (AddPeer) isCommand()          {}

// commandEnvelope is the tagged JSON wire form of a Command. Command is a
// non-empty interface, which encoding/json cannot unmarshal into directly;
// the tag lets Transaction's UnmarshalJSON dispatch back to the concrete
// variant, the same closed-set-dispatch idea as hashprovider.go's
// encodeCommand, applied to the block store's on-disk codec instead of
// hashing.
type commandEnvelope struct {
	Tag  uint8           `json:"tag"`
	Data json.RawMessage `json:"data"`
}

func commandTag(c Command) uint8 {
	switch c.(type) {
	case CreateDomain:
		return 1
	case CreateAccount:
		return 2
	case CreateAsset:
		return 3
	case AddAssetQuantity:
		return 4
	case TransferAsset:
		return 5
	case AddSignatory:
		return 6
	case RemoveSignatory:
		return 7
	case SetQuorum:
		return 8
	case AddPeer:
		return 9
	default:
		return 0
	}
}

func decodeCommandJSON(tag uint8, data json.RawMessage) (Command, error) {
	switch tag {
	case 1:
		var c CreateDomain
		err := json.Unmarshal(data, &c)
		return c, err
	case 2:
		var c CreateAccount
		err := json.Unmarshal(data, &c)
		return c, err
	case 3:
		var c CreateAsset
		err := json.Unmarshal(data, &c)
		return c, err
	case 4:
		var c AddAssetQuantity
		err := json.Unmarshal(data, &c)
		return c, err
	case 5:
		var c TransferAsset
		err := json.Unmarshal(data, &c)
		return c, err
	case 6:
		var c AddSignatory
		err := json.Unmarshal(data, &c)
		return c, err
	case 7:
		var c RemoveSignatory
		err := json.Unmarshal(data, &c)
		return c, err
	case 8:
		var c SetQuorum
		err := json.Unmarshal(data, &c)
		return c, err
	case 9:
		var c AddPeer
		err := json.Unmarshal(data, &c)
		return c, err
	default:
		return nil, fmt.Errorf("core: unknown command tag %d", tag)
	}
}

// --- Transactions & blocks ----------------------------------------------------

// TxHeader identifies the creator and orders transactions from the same
// creator via a monotonic per-creator counter.
type TxHeader struct {
	CreatorAccountID AccountID
	CreatedAt        time.Time
	Counter          uint64
}

type Transaction struct {
	Header   TxHeader
	Commands []Command
	Hash     Hash
}

// transactionJSON is Transaction's on-disk shape: Commands round-trips as
// tagged envelopes instead of the bare []Command interface slice, which
// encoding/json cannot unmarshal (spec.md §6 block store "sequential read").
type transactionJSON struct {
	Header   TxHeader          `json:"header"`
	Commands []commandEnvelope `json:"commands"`
	Hash     Hash              `json:"hash"`
}

func (tx Transaction) MarshalJSON() ([]byte, error) {
	envs := make([]commandEnvelope, len(tx.Commands))
	for i, c := range tx.Commands {
		data, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("marshal command %d: %w", i, err)
		}
		envs[i] = commandEnvelope{Tag: commandTag(c), Data: data}
	}
	return json.Marshal(transactionJSON{Header: tx.Header, Commands: envs, Hash: tx.Hash})
}

func (tx *Transaction) UnmarshalJSON(data []byte) error {
	var aux transactionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	tx.Header = aux.Header
	tx.Hash = aux.Hash
	tx.Commands = make([]Command, len(aux.Commands))
	for i, e := range aux.Commands {
		cmd, err := decodeCommandJSON(e.Tag, e.Data)
		if err != nil {
			return fmt.Errorf("unmarshal command %d: %w", i, err)
		}
		tx.Commands[i] = cmd
	}
	return nil
}

// BlockHeader carries everything hashed to produce Block.Hash except the
// hash itself (spec.md §4.1: "excluding the hash field itself").
type BlockHeader struct {
	Height     uint64
	PrevHash   Hash
	MerkleRoot Hash
	CreatedAt  time.Time
	TxsNumber  uint32
}

type Block struct {
	Header       BlockHeader
	Hash         Hash
	Transactions []*Transaction
}

// Proposal is an ordering-sequence batch, distinct from a Block: its
// Height is the ordering height, not the eventual block height.
type Proposal struct {
	Height       uint64
	Transactions []*Transaction
}

// TxRef locates a transaction within the committed chain.
type TxRef struct {
	Height uint64
	Index  uint32
	TxHash Hash
}
