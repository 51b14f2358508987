//go:generate go run go.uber.org/mock/mockgen -source=journal.go -destination=../mocks/mock_journal_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"arena-ledger/domain"
	pb "arena-ledger/proto/ledger"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type IJournalRepository interface {
	Append(record JournalRecord) error
	List(id domain.ParticipantID) ([]JournalRecord, error)
	ListAll() ([]JournalRecord, error)
}

// JournalRepository is the append-only audit trail of balance mutations.
// It is write-only from the ledger's point of view: nothing is ever read
// back to restore balances, only inspected by operators.
type JournalRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewJournalRepository(db *badger.DB, log *slog.Logger) JournalRepository {
	return JournalRepository{db: db, log: log}
}

type JournalRecord struct {
	ID          uuid.UUID
	Participant domain.ParticipantID
	Amount      int64
	Balance     domain.Balance
	Reason      string
	At          time.Time
}

// Append persists one mutation in BadgerDB.
// The key is formatted as "reward:{participant_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two mutations
//     land at the same nanosecond.
func (r JournalRepository) Append(record JournalRecord) error {
	key := fmt.Sprintf("reward:%s:%019d:%s",
		record.Participant,
		record.At.UnixNano(),
		record.ID,
	)
	bytes, err := proto.Marshal(lo.ToPtr(fromJournalRecord(record)))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// List retrieves the mutation history of one participant using a prefix scan.
// Thanks to the padded timestamp in the key, records come back in time order.
func (r JournalRepository) List(id domain.ParticipantID) ([]JournalRecord, error) {
	prefix := fmt.Sprintf("reward:%s:", id)
	return r.scan([]byte(prefix))
}

// ListAll retrieves every journal record, across participants.
func (r JournalRepository) ListAll() ([]JournalRecord, error) {
	return r.scan([]byte("reward:"))
}

func (r JournalRepository) scan(prefix []byte) ([]JournalRecord, error) {
	var raw [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]JournalRecord, 0, len(raw))
	for _, b := range raw {
		var entryPb pb.JournalEntry
		if err = proto.Unmarshal(b, &entryPb); err != nil {
			return nil, err
		}
		record, err := toJournalRecord(&entryPb)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func fromJournalRecord(record JournalRecord) pb.JournalEntry {
	return pb.JournalEntry{
		Id:            record.ID.String(),
		ParticipantId: string(record.Participant),
		Amount:        record.Amount,
		Balance:       int64(record.Balance),
		Reason:        record.Reason,
		At:            timestamppb.New(record.At),
	}
}

func toJournalRecord(entryPb *pb.JournalEntry) (JournalRecord, error) {
	parsedID, err := uuid.Parse(entryPb.Id)
	if err != nil {
		return JournalRecord{}, err
	}
	return JournalRecord{
		ID:          parsedID,
		Participant: domain.ParticipantID(entryPb.ParticipantId),
		Amount:      entryPb.Amount,
		Balance:     domain.Balance(entryPb.Balance),
		Reason:      entryPb.Reason,
		At:          entryPb.At.AsTime(),
	}, nil
}
